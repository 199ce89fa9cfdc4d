// Package pipeline runs one madlib request end to end:
// moderate → generate template → fill slots → persist.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// Moderator screens the topic. A non-family-friendly topic returns an error
// and the pipeline stops before any generation.
type Moderator interface {
	Check(ctx context.Context, topic string) error
}

// TemplateGenerator produces a validated madlib template for a topic.
type TemplateGenerator interface {
	Generate(ctx context.Context, topic string) (madlib.Template, error)
}

// WordFiller generates one word per slot of its kind. The adjective and verb
// fillers share this contract and run concurrently.
type WordFiller interface {
	Kind() madlib.SlotKind
	Fill(ctx context.Context, topic string, n int) ([]string, error)
}

// NounSource supplies the user's nouns, one value per noun slot, keyed by
// placeholder token. Interactive in the CLI, scripted in tests.
type NounSource interface {
	Collect(ctx context.Context, slots []madlib.Slot) (map[string]string, error)
}

// Persister submits a completed madlib to external storage.
type Persister interface {
	Save(ctx context.Context, c madlib.Completed) error
}

// Pipeline owns the single in-flight template for the duration of one
// request. Nothing is retained across runs.
type Pipeline struct {
	Moderator Moderator
	Templates TemplateGenerator
	Fillers   []WordFiller
	Nouns     NounSource
	Persister Persister
}

// Run executes one request. The returned Completed carries the ID it was
// persisted under.
func (p *Pipeline) Run(ctx context.Context, topic string) (madlib.Completed, error) {
	if err := p.Moderator.Check(ctx, topic); err != nil {
		return madlib.Completed{}, err
	}

	tpl, err := p.Templates.Generate(ctx, topic)
	if err != nil {
		return madlib.Completed{}, err
	}

	words, err := p.fill(ctx, tpl)
	if err != nil {
		return madlib.Completed{}, err
	}

	done, err := madlib.Fill(tpl, words)
	if err != nil {
		return madlib.Completed{}, err
	}
	done.ID = uuid.NewString()

	if err := p.Persister.Save(ctx, done); err != nil {
		return done, fmt.Errorf("persist madlib: %w", err)
	}
	return done, nil
}

// fill gathers the generated and user-supplied words. The word agents run in
// parallel while nouns are collected on the calling goroutine, since the noun
// source may need the terminal.
func (p *Pipeline) fill(ctx context.Context, tpl madlib.Template) (map[string]string, error) {
	byKind := tpl.SlotsByKind()

	words := make(map[string]string, len(tpl.Slots))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errCh := make(chan error, len(p.Fillers))

	for _, f := range p.Fillers {
		slots := byKind[f.Kind()]
		if len(slots) == 0 {
			continue
		}
		wg.Add(1)
		go func(f WordFiller, slots []madlib.Slot) {
			defer wg.Done()
			got, err := f.Fill(ctx, tpl.Topic, len(slots))
			if err != nil {
				errCh <- err
				return
			}
			mu.Lock()
			for i, s := range slots {
				words[s.Placeholder()] = got[i]
			}
			mu.Unlock()
		}(f, slots)
	}

	var nounErr error
	if nounSlots := byKind[madlib.KindNoun]; len(nounSlots) > 0 && p.Nouns != nil {
		var got map[string]string
		got, nounErr = p.Nouns.Collect(ctx, nounSlots)
		if nounErr == nil {
			mu.Lock()
			for k, v := range got {
				words[k] = v
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	close(errCh)

	if nounErr != nil {
		return nil, fmt.Errorf("collect nouns: %w", nounErr)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return words, nil
}
