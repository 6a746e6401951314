// Package counts parses the loose numeric tokens that appear in search
// snippets and profile metadata: plain integers, thousands separators, and
// K/M/B suffixed shorthand.
package counts

import (
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`^(\d+(\.\d+)?)([KMB])?$`)

var multipliers = map[string]float64{
	"K": 1_000,
	"M": 1_000_000,
	"B": 1_000_000_000,
}

// Parse converts a human formatted count token into a number:
// "1,234" -> 1234, "2.5M" -> 2500000, "3B" -> 3000000000. The boolean is
// false when the token holds no usable value, which is the normal outcome
// for prose tokens, not an error.
func Parse(token string) (int64, bool) {
	t := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(token), ",", ""))
	if t == "" {
		return 0, false
	}
	m := tokenPattern.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	mult := 1.0
	if m[3] != "" {
		mult = multipliers[m[3]]
	}
	// Truncation toward zero matches how the shorthand is read aloud:
	// 2.5M is exactly 2,500,000, never rounded up past it.
	return int64(num * mult), true
}

// CleanToken strips the separator runes search engines decorate snippet
// tokens with so that the remainder can be handed to Parse.
func CleanToken(token string) string {
	return strings.Trim(token, "·•|, ")
}

// missingValues are the cell spellings treated as "no value" in CSV files.
var missingValues = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"none": {},
	"null": {},
}

// IsMissing reports whether a CSV cell should be treated as holding no
// value.
func IsMissing(cell string) bool {
	_, ok := missingValues[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// Format renders a count the way checkpoint cells store it.
func Format(n int64) string {
	return strconv.FormatInt(n, 10)
}
