package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profiles maps a role name (moderator, template, adjective, verb,
// noun_check) to a replacement system instruction. Empty entries fall back to
// the built-in text, so a profile file only needs the roles it changes.
type Profiles map[string]string

// LoadProfiles reads role instruction overrides from a YAML file:
//
//	moderator: |
//	  <replacement system instruction>
//	template: |
//	  ...
func LoadProfiles(path string) (Profiles, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profiles
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse prompt profiles %s: %w", path, err)
	}
	return p, nil
}

func (p Profiles) system(role, builtin string) string {
	if p == nil {
		return builtin
	}
	if s, ok := p[role]; ok && s != "" {
		return s
	}
	return builtin
}
