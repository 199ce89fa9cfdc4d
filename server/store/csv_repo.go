package store

import (
	"context"
	"encoding/csv"
	"errors"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// SeedTemplate is one canned madlib template from the seed CSV.
type SeedTemplate struct {
	ID    int
	Theme string
	Text  string
}

// CSVRepo serves canned templates when no model is reachable (offline mode).
type CSVRepo struct {
	templates []SeedTemplate
}

// NewCSVRepo loads the seed CSV (id,theme,template) at program start.
func NewCSVRepo(path string) (*CSVRepo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3 // id,theme,template
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("seed CSV has no templates")
	}

	// skip header
	var tpl []SeedTemplate
	for _, rec := range records[1:] {
		id, _ := strconv.Atoi(rec[0])
		tpl = append(tpl, SeedTemplate{
			ID: id, Theme: rec[1], Text: rec[2],
		})
	}
	return &CSVRepo{templates: tpl}, nil
}

// ListByTheme returns the seed templates for one theme.
func (r *CSVRepo) ListByTheme(_ context.Context, theme string) ([]SeedTemplate, error) {
	var out []SeedTemplate
	for _, t := range r.templates {
		if strings.EqualFold(t.Theme, theme) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Generate satisfies the pipeline's TemplateGenerator using canned templates:
// a seed whose theme appears in the topic wins, otherwise one is picked at
// random. No moderation or word-limit retry loop applies here; seeds are
// curated by hand.
func (r *CSVRepo) Generate(_ context.Context, topic string) (madlib.Template, error) {
	if len(r.templates) == 0 {
		return madlib.Template{}, errors.New("no seed templates loaded")
	}

	pick := -1
	lower := strings.ToLower(topic)
	for i, t := range r.templates {
		if strings.Contains(lower, strings.ToLower(t.Theme)) {
			pick = i
			break
		}
	}
	if pick < 0 {
		pick = rand.Intn(len(r.templates))
	}

	seed := r.templates[pick]
	return madlib.Template{
		Topic:     topic,
		Text:      seed.Text,
		Slots:     madlib.ParseSlots(seed.Text),
		CreatedAt: time.Now().UTC(),
	}, nil
}
