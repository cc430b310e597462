package extract

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^\d]`)

// CleanCurrency normalizes a monetary field to a bare digit string. The
// documents spell absence several ways ("", "없음", "N/A"); all of them and
// any value with no digits at all become "0".
func CleanCurrency(value string) string {
	switch strings.TrimSpace(value) {
	case "", "없음", MissingValue:
		return "0"
	}
	cleaned := nonDigits.ReplaceAllString(value, "")
	if cleaned == "" {
		return "0"
	}
	return cleaned
}
