package agents

import (
	"context"
	"fmt"

	"github.com/qjs/madlibgen_gemma/server/prompts"
)

// NounValidator checks user-supplied words with the strict is-it-a-noun
// prompt before they are accepted into a slot.
type NounValidator struct {
	run Runner
	b   prompts.Builder
}

func NewNounValidator(run Runner, b prompts.Builder) *NounValidator {
	return &NounValidator{run: run, b: b}
}

func (v *NounValidator) Validate(ctx context.Context, word string) (bool, error) {
	raw, err := v.run.Chat(ctx, v.b.NounCheck(word))
	if err != nil {
		return false, fmt.Errorf("noun check: %w", err)
	}
	var result struct {
		IsNoun    bool   `json:"is_noun"`
		Reasoning string `json:"reasoning"`
	}
	if err := decodeJSON(raw, &result); err != nil {
		return false, fmt.Errorf("noun check: parse result: %w", err)
	}
	return result.IsNoun, nil
}
