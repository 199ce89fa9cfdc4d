package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qjs/madlibgen_gemma/server/agents"
	"github.com/qjs/madlibgen_gemma/server/madlib"
	pdfgenerator "github.com/qjs/madlibgen_gemma/server/pdf_generator"
	"github.com/qjs/madlibgen_gemma/server/store"
)

func init() { gin.SetMode(gin.TestMode) }

type memStore struct {
	items map[string]madlib.Completed
}

func newMemStore() *memStore { return &memStore{items: map[string]madlib.Completed{}} }

func (m *memStore) Save(_ context.Context, c madlib.Completed) error {
	m.items[c.ID] = c
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (madlib.Completed, error) {
	c, ok := m.items[id]
	if !ok {
		return madlib.Completed{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return c, nil
}

func (m *memStore) List(_ context.Context, _ int) ([]madlib.Completed, error) {
	var out []madlib.Completed
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

type stubModerator struct{ err error }

func (s stubModerator) Check(context.Context, string) error { return s.err }

type stubGenerator struct {
	tpl madlib.Template
	err error
}

func (s stubGenerator) Generate(_ context.Context, topic string) (madlib.Template, error) {
	if s.err != nil {
		return madlib.Template{}, s.err
	}
	tpl := s.tpl
	tpl.Topic = topic
	return tpl, nil
}

func completedFixture(id string) madlib.Completed {
	return madlib.Completed{
		ID:         id,
		Topic:      "the zoo",
		Text:       "a {noun_1}",
		FilledText: "a zebra",
		Slots:      []madlib.Slot{{Kind: madlib.KindNoun, Index: 1, Value: "zebra"}},
		CreatedAt:  time.Now().UTC(),
	}
}

func newTestApp(mod stubModerator, gen stubGenerator, apiKey string) (*WebApp, *memStore) {
	ms := newMemStore()
	app := NewWebApp(ms, mod, gen, pdfgenerator.NewPDFGenerator(pdfgenerator.DefaultConfig), apiKey)
	return app, ms
}

func doJSON(app *WebApp, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(stubModerator{}, stubGenerator{}, "")
	w := doJSON(app, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
}

func TestSaveMadlibPersistsAndReturnsID(t *testing.T) {
	app, ms := newTestApp(stubModerator{}, stubGenerator{}, "")
	w := doJSON(app, http.MethodPost, "/v1/madlibs", completedFixture("abc"), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		OK   bool              `json:"ok"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.OK || env.Data["id"] != "abc" {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
	if _, ok := ms.items["abc"]; !ok {
		t.Fatal("madlib not stored")
	}
}

func TestSaveMadlibAssignsIDWhenMissing(t *testing.T) {
	app, ms := newTestApp(stubModerator{}, stubGenerator{}, "")
	c := completedFixture("")
	w := doJSON(app, http.MethodPost, "/v1/madlibs", c, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(ms.items) != 1 {
		t.Fatalf("expected one stored madlib, got %d", len(ms.items))
	}
	for id := range ms.items {
		if id == "" {
			t.Fatal("stored under empty id")
		}
	}
}

func TestSaveMadlibRejectsUnfilledSlot(t *testing.T) {
	app, ms := newTestApp(stubModerator{}, stubGenerator{}, "")
	c := completedFixture("abc")
	c.Slots[0].Value = ""
	w := doJSON(app, http.MethodPost, "/v1/madlibs", c, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(ms.items) != 0 {
		t.Fatal("incomplete madlib was persisted")
	}
}

func TestGetMadlibNotFound(t *testing.T) {
	app, _ := newTestApp(stubModerator{}, stubGenerator{}, "")
	w := doJSON(app, http.MethodGet, "/v1/madlibs/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestGenerateTemplateRejectedTopic(t *testing.T) {
	app, _ := newTestApp(
		stubModerator{err: fmt.Errorf("%w: too grim", agents.ErrTopicRejected)},
		stubGenerator{}, "")
	w := doJSON(app, http.MethodPost, "/v1/templates", map[string]string{"topic": "grim stuff"}, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), ErrTopicRejected) {
		t.Fatalf("expected %s code, got %s", ErrTopicRejected, w.Body.String())
	}
}

func TestGenerateTemplateSuccess(t *testing.T) {
	text := "a {noun_1} will {verb_1} the {adjective_1} day"
	app, _ := newTestApp(stubModerator{}, stubGenerator{tpl: madlib.Template{
		Text:  text,
		Slots: madlib.ParseSlots(text),
	}}, "")
	w := doJSON(app, http.MethodPost, "/v1/templates", map[string]string{"topic": "the zoo"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		Data madlib.Template `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Topic != "the zoo" || len(env.Data.Slots) != 3 {
		t.Fatalf("unexpected template: %+v", env.Data)
	}
}

func TestGenerateTemplateFailure(t *testing.T) {
	app, _ := newTestApp(stubModerator{}, stubGenerator{err: agents.ErrGenerationFailed}, "")
	w := doJSON(app, http.MethodPost, "/v1/templates", map[string]string{"topic": "the zoo"}, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
}

func TestAPIKeyGuard(t *testing.T) {
	app, _ := newTestApp(stubModerator{}, stubGenerator{}, "sekrit")

	w := doJSON(app, http.MethodGet, "/v1/madlibs", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w = doJSON(app, http.MethodGet, "/v1/madlibs", nil, map[string]string{"X-Api-Key": "sekrit"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}

	// health stays open
	w = doJSON(app, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected open health endpoint, got %d", w.Code)
	}
}

func TestMadlibPDFEndpoint(t *testing.T) {
	app, ms := newTestApp(stubModerator{}, stubGenerator{}, "")
	ms.items["abc"] = completedFixture("abc")

	w := doJSON(app, http.MethodGet, "/v1/madlibs/abc/pdf", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
}
