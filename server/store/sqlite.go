// Package store persists completed madlibs and holds the seed template
// repository used for offline generation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// ErrNotFound is returned when no madlib exists under the requested id.
var ErrNotFound = errors.New("madlib not found")

const schema = `
CREATE TABLE IF NOT EXISTS madlibs (
	id            TEXT PRIMARY KEY,
	topic         TEXT NOT NULL,
	template_text TEXT NOT NULL,
	filled_text   TEXT NOT NULL,
	slots         TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	completed_at  TEXT NOT NULL
);`

// SQLite stores completed madlibs in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save writes the madlib keyed by its client-supplied id. INSERT OR REPLACE
// makes a retried submission idempotent.
func (s *SQLite) Save(ctx context.Context, c madlib.Completed) error {
	if c.ID == "" {
		return errors.New("madlib id is empty")
	}
	for _, slot := range c.Slots {
		if slot.Value == "" {
			return fmt.Errorf("%w: %s", madlib.ErrNotFilled, slot.Placeholder())
		}
	}
	slots, err := json.Marshal(c.Slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO madlibs (id, topic, template_text, filled_text, slots, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Topic, c.Text, c.FilledText, string(slots),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save madlib %s: %w", c.ID, err)
	}
	slog.Debug("madlib saved", "id", c.ID, "topic", c.Topic)
	return nil
}

// Get returns the madlib stored under id, or ErrNotFound.
func (s *SQLite) Get(ctx context.Context, id string) (madlib.Completed, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic, template_text, filled_text, slots, created_at, completed_at
		 FROM madlibs WHERE id = ?`, id)
	c, err := scanMadlib(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return madlib.Completed{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, err
}

// List returns up to limit madlibs, newest first.
func (s *SQLite) List(ctx context.Context, limit int) ([]madlib.Completed, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, template_text, filled_text, slots, created_at, completed_at
		 FROM madlibs ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []madlib.Completed
	for rows.Next() {
		c, err := scanMadlib(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanMadlib(scan func(...any) error) (madlib.Completed, error) {
	var c madlib.Completed
	var slots, created, completed string
	if err := scan(&c.ID, &c.Topic, &c.Text, &c.FilledText, &slots, &created, &completed); err != nil {
		return madlib.Completed{}, err
	}
	if err := json.Unmarshal([]byte(slots), &c.Slots); err != nil {
		return madlib.Completed{}, fmt.Errorf("decode slots: %w", err)
	}
	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return madlib.Completed{}, fmt.Errorf("decode created_at: %w", err)
	}
	if c.CompletedAt, err = time.Parse(time.RFC3339Nano, completed); err != nil {
		return madlib.Completed{}, fmt.Errorf("decode completed_at: %w", err)
	}
	return c, nil
}
