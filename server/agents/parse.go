package agents

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object in model output")

// decodeJSON unmarshals the first JSON object found in raw model output.
// Models wrap JSON in markdown fences or prose often enough that a strict
// json.Unmarshal on the whole string is a losing bet.
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return errNoJSON
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}
