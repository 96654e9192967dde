package utils

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,15}$`)
	strictPolicy  = bluemonday.StrictPolicy()
)

// SanitizeSymbol strips any markup from user input and upper-cases it.
func SanitizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(strictPolicy.Sanitize(raw)))
}

// ValidSymbol reports whether s looks like a ticker: letters, digits and the
// . - ^ = characters used by index and FX symbols, at most 15 long.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}
