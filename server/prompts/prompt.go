package prompts

import (
	"fmt"
	"strings"

	"github.com/qjs/madlibgen_gemma/server/madlib"
)

// Style controls the verbosity / format of the template prompt sent to the
// LLM.
//
//   - StyleCompact: shortest prompt, just enough to elicit JSON.
//   - StyleStoryteller: narrative instructions for livelier templates.
//
// If you add a new style, extend the switch in Builder.Template. Existing
// call-sites only need to swap the enum value.
type Style int

const (
	StyleCompact Style = iota
	StyleStoryteller
)

// Prompt is a system/user message pair for one chat call.
type Prompt struct {
	System string
	User   string
}

// Builder holds configuration for generating prompts. Profile overrides, when
// present, replace the built-in system instructions per role.
type Builder struct {
	Style    Style
	Model    string // optional: model name for conditional phrasing
	Profiles Profiles
}

const moderatorSystem = `Check if the given topic is family-friendly.
Topics containing violence, adult content, profanity, drugs,
or other inappropriate content should be marked as not family-friendly.
Respond with ONLY JSON: {"is_family_friendly": bool, "reasoning": "string"}.`

const nounCheckSystem = `Check if the given word is primarily a noun.
Be very strict:
- Reject words that are primarily verbs like: jump, run, fight, fly, swim, eat, sleep
- Reject words that are primarily adjectives like: happy, sad, big, small
- Accept only words that are clearly nouns like: car, house, person, tree, book, computer, dog, cat
- If a word CAN be used as a noun but is MORE COMMONLY used as another part of speech, reject it.
Respond with ONLY JSON: {"is_noun": bool, "reasoning": "string"}.`

// Moderation builds the family-friendly check for a raw topic.
func (b Builder) Moderation(topic string) Prompt {
	return Prompt{
		System: b.Profiles.system("moderator", moderatorSystem),
		User:   fmt.Sprintf("Topic: %q", topic),
	}
}

// Template builds the madlib template generation prompt. violation, when
// non-empty, is the validation failure from the previous attempt and is fed
// back so the model can correct it.
func (b Builder) Template(topic string, lim madlib.Limits, violation string) Prompt {
	perKind := lim.MinPerKind
	if perKind <= 0 {
		perKind = 5
	}

	tokens := placeholderList(perKind)

	var sys string
	switch b.Style {
	case StyleCompact:
		sys = fmt.Sprintf(
			"Write a madlib template under %d words using ALL of these placeholders exactly once: %s. Return ONLY JSON: {\"template_text\": \"string\"}.",
			lim.MaxWords, tokens,
		)
	case StyleStoryteller:
		fallthrough
	default:
		sys = fmt.Sprintf(`Create a fun, engaging madlib template for the given topic.
- Keep it under %d words
- Include EXACTLY %d fill-in placeholders: %d nouns, %d verbs, and %d adjectives
- Use placeholders in this exact format: %s
- Make sure to use ALL %d placeholders in your template
- Make it entertaining and appropriate for all ages
Return ONLY JSON with no markdown: {"template_text": "string"}.`,
			lim.MaxWords, perKind*3, perKind, perKind, perKind, tokens, perKind*3,
		)
	}

	user := fmt.Sprintf("Create a madlib template about: %s", topic)
	if violation != "" {
		user += fmt.Sprintf("\nYour previous attempt was rejected: %s. Fix that and try again.", violation)
	}
	return Prompt{System: b.Profiles.system("template", sys), User: user}
}

// Words builds the word generation prompt for adjective or verb slots.
func (b Builder) Words(kind madlib.SlotKind, topic string, n int) Prompt {
	var sys string
	switch kind {
	case madlib.KindVerb:
		sys = fmt.Sprintf(`Generate exactly %d unique verbs in their base form.
- Make them varied and interesting
- Keep them family-friendly
- Ensure all %d are completely different from each other
- Mix action types (movement, communication, creation, etc.)
Just provide the verbs. Return ONLY JSON: {"words": ["string"]}.`, n, n)
	default:
		sys = fmt.Sprintf(`Generate exactly %d unique adjectives.
- Make them varied and interesting (mix colors, textures, emotions, sizes, etc.)
- Keep them family-friendly
- Ensure all %d are completely different from each other
- Avoid repetitive patterns (like all ending in -ous or -ful)
Just provide the adjectives. Return ONLY JSON: {"words": ["string"]}.`, n, n)
	}
	return Prompt{
		System: b.Profiles.system(string(kind), sys),
		User:   fmt.Sprintf("Generate %d %ss for a madlib about: %s", n, kind, topic),
	}
}

// NounCheck builds the strict is-it-a-noun validation prompt.
func (b Builder) NounCheck(word string) Prompt {
	return Prompt{
		System: b.Profiles.system("noun_check", nounCheckSystem),
		User:   fmt.Sprintf("Is %q a noun?", word),
	}
}

func placeholderList(perKind int) string {
	var parts []string
	for _, kind := range []string{"noun", "verb", "adjective"} {
		for i := 1; i <= perKind; i++ {
			parts = append(parts, fmt.Sprintf("{%s_%d}", kind, i))
		}
	}
	return strings.Join(parts, ", ")
}
