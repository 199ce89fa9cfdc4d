package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qjs/madlibgen_gemma/server/madlib"
	"github.com/qjs/madlibgen_gemma/server/prompts"
)

// ErrGenerationFailed means the model could not produce a template that
// satisfies the limits within the attempt budget.
var ErrGenerationFailed = errors.New("template generation failed")

// DefaultMaxAttempts bounds the generate-validate-retry loop.
const DefaultMaxAttempts = 3

// TemplateAgent asks the model for a madlib template and validates the
// output. A validation failure is fed back into the next attempt's prompt.
type TemplateAgent struct {
	run         Runner
	b           prompts.Builder
	lim         madlib.Limits
	maxAttempts int
}

func NewTemplateAgent(run Runner, b prompts.Builder, lim madlib.Limits, maxAttempts int) *TemplateAgent {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &TemplateAgent{run: run, b: b, lim: lim, maxAttempts: maxAttempts}
}

func (a *TemplateAgent) Generate(ctx context.Context, topic string) (madlib.Template, error) {
	var violation string
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return madlib.Template{}, err
		}

		raw, err := a.run.Chat(ctx, a.b.Template(topic, a.lim, violation))
		if err != nil {
			return madlib.Template{}, fmt.Errorf("template generation: %w", err)
		}

		var payload struct {
			TemplateText string `json:"template_text"`
		}
		if err := decodeJSON(raw, &payload); err != nil {
			violation = "output was not the requested JSON shape"
			continue
		}

		tpl := madlib.Template{
			Topic:     topic,
			Text:      payload.TemplateText,
			Slots:     madlib.ParseSlots(payload.TemplateText),
			CreatedAt: time.Now().UTC(),
		}
		if err := madlib.Validate(tpl, a.lim); err != nil {
			violation = err.Error()
			continue
		}
		return tpl, nil
	}
	return madlib.Template{}, fmt.Errorf("%w after %d attempts: %s", ErrGenerationFailed, a.maxAttempts, violation)
}
