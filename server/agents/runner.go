package agents

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	api "github.com/ollama/ollama/api"

	"github.com/qjs/madlibgen_gemma/server/prompts"
)

// Runner executes one chat turn against the model and returns the raw text.
// Agents in this package share a single Runner so tests can substitute a fake.
type Runner interface {
	Chat(ctx context.Context, p prompts.Prompt) (string, error)
}

// OllamaRunner is the production Runner backed by the Ollama Go SDK.
type OllamaRunner struct {
	client *api.Client
	model  string
}

func NewOllamaRunner(ollamaBaseURL, model string) (*OllamaRunner, error) {
	base, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second, // whatever is sensible for your env
	}

	return &OllamaRunner{
		client: api.NewClient(base, httpClient),
		model:  model,
	}, nil
}

func (r *OllamaRunner) Chat(ctx context.Context, p prompts.Prompt) (string, error) {
	stream := false
	cReq := &api.ChatRequest{
		Model:  r.model,
		Stream: &stream,
		Messages: []api.Message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
	}

	var out strings.Builder
	err := r.client.Chat(ctx, cReq, func(cr api.ChatResponse) error {
		out.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama resp: %w", err)
	}
	return out.String(), nil
}
