package madlib

import (
	"regexp"
	"strconv"
	"strings"
)

var rePlaceholder = regexp.MustCompile(`\{(noun|verb|adjective)_(\d+)\}`)

// ParseSlots scans template text for placeholder tokens and returns the slot
// definitions in order of first appearance. A token that occurs more than
// once still defines a single slot.
func ParseSlots(text string) []Slot {
	matches := rePlaceholder.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	slots := make([]Slot, 0, len(matches))
	for _, m := range matches {
		if seen[m[0]] {
			continue
		}
		seen[m[0]] = true
		idx, _ := strconv.Atoi(m[2])
		slots = append(slots, Slot{Kind: SlotKind(m[1]), Index: idx})
	}
	return slots
}

// WordCount counts whitespace-separated words in template text. Each
// placeholder token counts as a single word regardless of its spelling.
func WordCount(text string) int {
	return len(strings.Fields(rePlaceholder.ReplaceAllString(text, "x")))
}
