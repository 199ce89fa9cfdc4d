package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/qjs/madlibgen_gemma/server/prompts"
)

// ErrTopicRejected means the moderator judged the topic not family-friendly.
// A rejection is terminal for the request: no template is generated and
// nothing is persisted.
var ErrTopicRejected = errors.New("topic is not family-friendly")

// Verdict is the moderator's structured answer.
type Verdict struct {
	FamilyFriendly bool   `json:"is_family_friendly"`
	Reasoning      string `json:"reasoning"`
}

// Moderator screens topics before any generation happens.
type Moderator struct {
	run Runner
	b   prompts.Builder
}

func NewModerator(run Runner, b prompts.Builder) *Moderator {
	return &Moderator{run: run, b: b}
}

// Check returns ErrTopicRejected (wrapped with the model's reasoning) when
// the topic fails the family-friendly screen.
func (m *Moderator) Check(ctx context.Context, topic string) error {
	raw, err := m.run.Chat(ctx, m.b.Moderation(topic))
	if err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	var v Verdict
	if err := decodeJSON(raw, &v); err != nil {
		return fmt.Errorf("moderation: parse verdict: %w", err)
	}
	if !v.FamilyFriendly {
		return fmt.Errorf("%w: %s", ErrTopicRejected, v.Reasoning)
	}
	return nil
}
