// Package language resolves display names for the two-letter codes used in
// configuration and in transcriber output.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// displayOverrides pins names where the bare code resolves too broadly for
// prompts and published metadata.
var displayOverrides = map[string]string{
	"zh": "Simplified Chinese",
}

// DisplayName returns the English display name for a language code.
// Unresolvable codes are title-cased rather than dropped so downstream text
// always has something readable.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if name, ok := displayOverrides[strings.ToLower(code)]; ok {
		return name
	}
	if tag, err := xlang.Parse(code); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return cases.Title(xlang.English).String(code)
}
