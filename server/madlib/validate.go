package madlib

import (
	"errors"
	"fmt"
)

var (
	ErrNoSlots      = errors.New("template has no placeholders")
	ErrTooManyWords = errors.New("template exceeds the word limit")
	ErrTooFewSlots  = errors.New("template has too few fill-ins")
	ErrSlotMismatch = errors.New("template text and slot list disagree")
	ErrUnknownKind  = errors.New("slot has an unknown kind")
	ErrNotFilled    = errors.New("madlib has unfilled slots")
	ErrEmptyValue   = errors.New("slot value is empty")
)

// Validate checks a template against the given limits and the structural
// invariant: every placeholder in the text has exactly one slot entry and
// vice versa.
func Validate(t Template, lim Limits) error {
	parsed := ParseSlots(t.Text)
	if len(parsed) == 0 {
		return ErrNoSlots
	}

	if wc := WordCount(t.Text); lim.MaxWords > 0 && wc >= lim.MaxWords {
		return fmt.Errorf("%w: %d words (limit %d)", ErrTooManyWords, wc, lim.MaxWords)
	}
	if lim.MinSlots > 0 && len(parsed) < lim.MinSlots {
		return fmt.Errorf("%w: %d fill-ins (want at least %d)", ErrTooFewSlots, len(parsed), lim.MinSlots)
	}

	declared := make(map[string]bool, len(t.Slots))
	for _, s := range t.Slots {
		if !s.Kind.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
		}
		declared[s.Placeholder()] = true
	}
	if len(declared) != len(t.Slots) {
		return fmt.Errorf("%w: duplicate slot entries", ErrSlotMismatch)
	}
	if len(declared) != len(parsed) {
		return fmt.Errorf("%w: %d placeholders in text, %d slot entries", ErrSlotMismatch, len(parsed), len(declared))
	}
	for _, s := range parsed {
		if !declared[s.Placeholder()] {
			return fmt.Errorf("%w: %s appears in text but not in slots", ErrSlotMismatch, s.Placeholder())
		}
	}

	if lim.MinPerKind > 0 {
		byKind := t.SlotsByKind()
		for _, kind := range []SlotKind{KindAdjective, KindVerb, KindNoun} {
			if got := len(byKind[kind]); got < lim.MinPerKind {
				return fmt.Errorf("%w: %d %s slots (want at least %d)", ErrTooFewSlots, got, kind, lim.MinPerKind)
			}
		}
	}
	return nil
}
