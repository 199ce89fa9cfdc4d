package madlib

import (
	"fmt"
	"time"
)

// SlotKind is the grammatical kind of a fill-in slot.
type SlotKind string

const (
	KindAdjective SlotKind = "adjective"
	KindVerb      SlotKind = "verb"
	KindNoun      SlotKind = "noun"
)

// Valid reports whether k is one of the three known kinds.
func (k SlotKind) Valid() bool {
	switch k {
	case KindAdjective, KindVerb, KindNoun:
		return true
	}
	return false
}

// Slot is a single fill-in position in a template. Its placeholder token in
// the template text is "{<kind>_<n>}", e.g. {noun_1} or {verb_3}.
type Slot struct {
	Kind  SlotKind `json:"kind"`
	Index int      `json:"index"`
	Value string   `json:"value,omitempty"`
}

// Placeholder returns the token this slot occupies in the template text.
func (s Slot) Placeholder() string {
	return fmt.Sprintf("{%s_%d}", s.Kind, s.Index)
}

// Template is an un-filled madlib: the text with placeholder tokens plus the
// ordered slot definitions.
type Template struct {
	Topic     string    `json:"topic"`
	Text      string    `json:"template_text"`
	Slots     []Slot    `json:"slots"`
	CreatedAt time.Time `json:"created_at"`
}

// Completed is a fully filled madlib, ready for persistence.
type Completed struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Text        string    `json:"template_text"`
	FilledText  string    `json:"filled_text"`
	Slots       []Slot    `json:"slots"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Limits are the constraints a generated template must satisfy.
type Limits struct {
	MaxWords   int // template body, placeholders counted as one word each
	MinSlots   int // total fill-in count
	MinPerKind int // per-kind minimum (0 disables the check)
}

// DefaultLimits match the product constraints: under 150 words, at least 15
// fill-ins, at least 5 of each kind.
var DefaultLimits = Limits{MaxWords: 150, MinSlots: 15, MinPerKind: 5}

// SlotsByKind groups the template's slots by kind, preserving order.
func (t Template) SlotsByKind() map[SlotKind][]Slot {
	out := make(map[SlotKind][]Slot, 3)
	for _, s := range t.Slots {
		out[s.Kind] = append(out[s.Kind], s)
	}
	return out
}
