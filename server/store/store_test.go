package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

func testCompleted(id string) madlib.Completed {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return madlib.Completed{
		ID:         id,
		Topic:      "the zoo",
		Text:       "a {adjective_1} {noun_1} will {verb_1}",
		FilledText: "a soggy zebra will dance",
		Slots: []madlib.Slot{
			{Kind: madlib.KindAdjective, Index: 1, Value: "soggy"},
			{Kind: madlib.KindNoun, Index: 1, Value: "zebra"},
			{Kind: madlib.KindVerb, Index: 1, Value: "dance"},
		},
		CreatedAt:   now.Add(-time.Minute),
		CompletedAt: now,
	}
}

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "madlibs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	want := testCompleted("id-1")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FilledText != want.FilledText || got.Topic != want.Topic {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Slots) != 3 || got.Slots[1].Value != "zebra" {
		t.Fatalf("slots not preserved: %+v", got.Slots)
	}
	if !got.CompletedAt.Equal(want.CompletedAt) {
		t.Fatalf("completed_at mismatch: %v vs %v", got.CompletedAt, want.CompletedAt)
	}
}

func TestSaveIsIdempotentPerID(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	c := testCompleted("id-1")
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}
	c.FilledText = "a soggy zebra will sing"
	if err := s.Save(ctx, c); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one row after replay, got %d", len(all))
	}
	if all[0].FilledText != "a soggy zebra will sing" {
		t.Fatalf("replace did not take: %s", all[0].FilledText)
	}
}

func TestSaveRejectsUnfilledSlot(t *testing.T) {
	s := openTestDB(t)
	c := testCompleted("id-1")
	c.Slots[0].Value = ""
	if err := s.Save(context.Background(), c); !errors.Is(err, madlib.ErrNotFilled) {
		t.Fatalf("expected ErrNotFilled, got %v", err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := openTestDB(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	older := testCompleted("id-old")
	older.CompletedAt = older.CompletedAt.Add(-time.Hour)
	newer := testCompleted("id-new")
	if err := s.Save(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, newer); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "id-new" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func writeSeedCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.csv")
	content := "id,theme,template\n" +
		`1,zoo,"a {adjective_1} {noun_1} will {verb_1}"` + "\n" +
		`2,space,"the {adjective_1} {noun_1} can {verb_1}"` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVRepoThemeMatch(t *testing.T) {
	repo, err := NewCSVRepo(writeSeedCSV(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tpl, err := repo.Generate(context.Background(), "a rainy day at the ZOO")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tpl.Text != "a {adjective_1} {noun_1} will {verb_1}" {
		t.Fatalf("expected zoo seed, got %q", tpl.Text)
	}
	if len(tpl.Slots) != 3 {
		t.Fatalf("expected parsed slots, got %+v", tpl.Slots)
	}
}

func TestCSVRepoFallsBackToRandomPick(t *testing.T) {
	repo, err := NewCSVRepo(writeSeedCSV(t))
	if err != nil {
		t.Fatal(err)
	}
	tpl, err := repo.Generate(context.Background(), "dinosaurs")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tpl.Text == "" || len(tpl.Slots) == 0 {
		t.Fatalf("expected some seed, got %+v", tpl)
	}
}

func TestCSVRepoListByTheme(t *testing.T) {
	repo, err := NewCSVRepo(writeSeedCSV(t))
	if err != nil {
		t.Fatal(err)
	}
	seeds, err := repo.ListByTheme(context.Background(), "Space")
	if err != nil {
		t.Fatal(err)
	}
	if len(seeds) != 1 || seeds[0].ID != 2 {
		t.Fatalf("unexpected seeds: %+v", seeds)
	}
}
