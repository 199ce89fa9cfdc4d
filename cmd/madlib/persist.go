package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// localPersister writes the completed madlib as JSON under dir when no
// daemon is configured, so a session's result is never lost.
type localPersister struct {
	dir string
}

func (p *localPersister) Save(_ context.Context, c madlib.Completed) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", p.dir, err)
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(p.dir, fmt.Sprintf("madlib_%s.json", c.ID))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
