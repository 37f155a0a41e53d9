package lang

import (
	"fmt"
	"strings"
)

// Code is an ISO 639-1 language code, optionally with a region suffix
// (e.g. "pt-BR"). It identifies a translation target language.
type Code string

const (
	Spanish      Code = "es"
	French       Code = "fr"
	German       Code = "de"
	Chinese      Code = "zh"
	Japanese     Code = "ja"
	PortugueseBR Code = "pt-BR"
	PortuguesePT Code = "pt-PT"
)

// DefaultTargets is the full set of translation target languages, in the
// order they are presented to the translation model.
func DefaultTargets() []Code {
	return []Code{Spanish, French, German, Chinese, Japanese, PortugueseBR, PortuguesePT}
}

// Parse validates a language code string. It accepts both the hyphenated
// form ("pt-BR") and the underscore JSON key form ("pt_BR").
func Parse(s string) (Code, error) {
	c := Code(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	for _, known := range DefaultTargets() {
		if c == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown language code: %q", s)
}

// ParseList parses a comma-separated list of language codes.
func ParseList(s string) ([]Code, error) {
	var codes []Code
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := Parse(part)
		if err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no language codes in %q", s)
	}
	return codes, nil
}

func (c Code) String() string {
	return string(c)
}

// Key returns the JSON object key form of the code. Regional variants use
// an underscore ("pt_BR") because the translation model is instructed to
// emit underscore keys in its JSON output.
func (c Code) Key() string {
	return strings.ReplaceAll(string(c), "-", "_")
}
