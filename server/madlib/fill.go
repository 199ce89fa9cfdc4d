package madlib

import (
	"fmt"
	"strings"
	"time"
)

// Fill substitutes words into the template and returns the completed madlib.
// The words map is keyed by placeholder token ("{noun_1}" → "zebra"). Every
// slot must receive a non-empty value; a partial fill is an error so an
// incomplete madlib can never reach persistence.
func Fill(t Template, words map[string]string) (Completed, error) {
	filled := t.Text
	slots := make([]Slot, len(t.Slots))
	for i, s := range t.Slots {
		v, ok := words[s.Placeholder()]
		if !ok {
			return Completed{}, fmt.Errorf("%w: %s", ErrNotFilled, s.Placeholder())
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return Completed{}, fmt.Errorf("%w: %s", ErrEmptyValue, s.Placeholder())
		}
		s.Value = v
		slots[i] = s
		filled = strings.ReplaceAll(filled, s.Placeholder(), v)
	}

	return Completed{
		Topic:       t.Topic,
		Text:        t.Text,
		FilledText:  filled,
		Slots:       slots,
		CreatedAt:   t.CreatedAt,
		CompletedAt: time.Now().UTC(),
	}, nil
}
