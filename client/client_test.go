package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

func fixture() madlib.Completed {
	return madlib.Completed{
		ID:         "id-1",
		Topic:      "the zoo",
		Text:       "a {noun_1}",
		FilledText: "a zebra",
		Slots:      []madlib.Slot{{Kind: madlib.KindNoun, Index: 1, Value: "zebra"}},
		CreatedAt:  time.Now().UTC(),
	}
}

func TestOfflineClient(t *testing.T) {
	t.Setenv("MADLIB_URL", "")
	c := New(Config{})
	if c.Available() {
		t.Fatal("expected offline client")
	}
	if err := c.Save(context.Background(), fixture()); !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
}

func TestSavePostsEnvelope(t *testing.T) {
	var gotPath, gotKey string
	var gotBody madlib.Completed
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": map[string]string{"id": gotBody.ID}})
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL, APIKey: "sekrit"})
	if err := c.Save(context.Background(), fixture()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotPath != "/v1/madlibs" {
		t.Fatalf("path %q", gotPath)
	}
	if gotKey != "sekrit" {
		t.Fatalf("api key %q", gotKey)
	}
	if gotBody.ID != "id-1" || gotBody.FilledText != "a zebra" {
		t.Fatalf("body mismatch: %+v", gotBody)
	}
}

func TestSaveSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": map[string]string{"code": "invalid_request", "message": "slot {noun_1} has no value"},
		})
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL})
	err := c.Save(context.Background(), fixture())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid_request") {
		t.Fatalf("expected error code in %q", err.Error())
	}
}

func TestGetDecodesMadlib(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": fixture()})
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL})
	got, err := c.Get(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FilledText != "a zebra" {
		t.Fatalf("unexpected madlib: %+v", got)
	}
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("MADLIB_URL", "http://example.test")
	t.Setenv("MADLIB_API_KEY", "from-env")
	c := New(Config{})
	if !c.Available() {
		t.Fatal("expected configured client")
	}
	if c.apiKey != "from-env" {
		t.Fatalf("api key %q", c.apiKey)
	}
}
