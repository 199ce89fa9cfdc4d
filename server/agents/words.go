package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/qjs/madlibgen_gemma/server/madlib"
	"github.com/qjs/madlibgen_gemma/server/prompts"
)

// WordAgent generates one word per slot of a single kind. Two instances serve
// a request: one for adjectives, one for verbs. Nouns come from the user.
type WordAgent struct {
	run  Runner
	b    prompts.Builder
	kind madlib.SlotKind
}

func NewWordAgent(run Runner, b prompts.Builder, kind madlib.SlotKind) *WordAgent {
	return &WordAgent{run: run, b: b, kind: kind}
}

// Kind reports which slot kind this agent serves.
func (a *WordAgent) Kind() madlib.SlotKind { return a.kind }

// Fill returns n unique words. Duplicate or short output gets one re-ask
// before giving up.
func (a *WordAgent) Fill(ctx context.Context, topic string, n int) ([]string, error) {
	words, err := a.ask(ctx, topic, n)
	if err != nil {
		return nil, err
	}
	if len(words) < n {
		more, err := a.ask(ctx, topic, n)
		if err != nil {
			return nil, err
		}
		words = dedupe(append(words, more...))
	}
	if len(words) < n {
		return nil, fmt.Errorf("%s agent returned %d unique words, want %d", a.kind, len(words), n)
	}
	return words[:n], nil
}

func (a *WordAgent) ask(ctx context.Context, topic string, n int) ([]string, error) {
	raw, err := a.run.Chat(ctx, a.b.Words(a.kind, topic, n))
	if err != nil {
		return nil, fmt.Errorf("%s generation: %w", a.kind, err)
	}
	var payload struct {
		Words []string `json:"words"`
	}
	if err := decodeJSON(raw, &payload); err != nil {
		return nil, fmt.Errorf("%s generation: parse words: %w", a.kind, err)
	}
	return dedupe(payload.Words), nil
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
