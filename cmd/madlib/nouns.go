package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// nounChecker is satisfied by agents.NounValidator; nil disables validation.
type nounChecker interface {
	Validate(ctx context.Context, word string) (bool, error)
}

// stdinNouns collects one noun per noun slot from the terminal, re-prompting
// until the validator accepts the word.
type stdinNouns struct {
	in        *bufio.Scanner
	out       io.Writer
	validator nounChecker
}

func (n *stdinNouns) Collect(ctx context.Context, slots []madlib.Slot) (map[string]string, error) {
	fmt.Fprintf(n.out, "\nLet's fill in your madlib! I need %d nouns from you.\n", len(slots))

	words := make(map[string]string, len(slots))
	for i, s := range slots {
		word, err := n.ask(ctx, i+1)
		if err != nil {
			return nil, err
		}
		words[s.Placeholder()] = word
	}
	return words, nil
}

func (n *stdinNouns) ask(ctx context.Context, number int) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprintf(n.out, "Please enter noun #%d: ", number)
		if !n.in.Scan() {
			if err := n.in.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		word := strings.TrimSpace(n.in.Text())
		if word == "" {
			continue
		}
		if n.validator == nil {
			return word, nil
		}
		ok, err := n.validator.Validate(ctx, word)
		if err != nil {
			return "", err
		}
		if ok {
			return word, nil
		}
		fmt.Fprintf(n.out, "%q is not a valid noun. Please try again.\n", word)
	}
}
