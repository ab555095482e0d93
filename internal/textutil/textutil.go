// Package textutil holds the pure text and money normalization helpers
// shared by the validation pipeline, the search matcher and the sorters.
package textutil

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Trim strips leading and trailing whitespace.
func Trim(value string) string {
	return strings.TrimSpace(value)
}

// IsBlank reports whether the value is empty after trimming.
func IsBlank(value string) bool {
	return Trim(value) == ""
}

// ExceedsLimit compares the trimmed length against max, matching how the
// backend counts field lengths.
func ExceedsLimit(value string, max int) bool {
	return len([]rune(Trim(value))) > max
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips combining diacritical marks and trims,
// producing the accent-insensitive form used for search and title sorting.
func Normalize(value string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(value))
	if err != nil {
		out = strings.ToLower(value)
	}
	return strings.TrimSpace(out)
}

// ParseMoney parses locale-ambiguous manual money input. Everything except
// digits, comma and dot is stripped; the rightmost comma or dot is the
// decimal separator, digits after it are truncated to two; with no separator
// the digit run is a whole amount. ok is false when no digits remain.
//
// The rightmost-wins rule means "1.234" parses as 1.23, not 1234: the dot is
// always a decimal separator when it is the last one present.
func ParseMoney(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return decimal.Zero, false
	}

	sep := strings.LastIndexAny(cleaned, ",.")
	if sep == -1 {
		digits := digitsOnly(cleaned)
		if digits == "" {
			return decimal.Zero, false
		}
		value, err := decimal.NewFromString(digits)
		if err != nil {
			return decimal.Zero, false
		}
		return value, true
	}

	intPart := digitsOnly(cleaned[:sep])
	decPart := digitsOnly(cleaned[sep+1:])
	if len(decPart) > 2 {
		decPart = decPart[:2]
	}
	if intPart == "" && decPart == "" {
		return decimal.Zero, false
	}
	if intPart == "" {
		intPart = "0"
	}
	for len(decPart) < 2 {
		decPart += "0"
	}
	value, err := decimal.NewFromString(intPart + "." + decPart)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
