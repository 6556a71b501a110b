package lifecycle

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWarrantyMonths is the fallback when a declaration is missing or
// unparsable. Falling back is deliberate policy, not an error: warranty
// creation must always be able to proceed.
const DefaultWarrantyMonths = 12

var declNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseMonths normalizes a material's warranty-period declaration into a
// month count of at least 1. Suppliers declare periods as a bare number
// (months) or free text such as "12 months", "1 year" or "365 days"; the
// value reaches us as an untyped number-or-string, so it is parsed here, once,
// and the rest of the engine operates on a plain integer.
func ParseMonths(declaration interface{}) int {
	switch v := declaration.(type) {
	case nil:
		return DefaultWarrantyMonths
	case int:
		return monthsFromNumber(float64(v))
	case int32:
		return monthsFromNumber(float64(v))
	case int64:
		return monthsFromNumber(float64(v))
	case float32:
		return monthsFromNumber(float64(v))
	case float64:
		return monthsFromNumber(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return DefaultWarrantyMonths
		}
		return monthsFromNumber(n)
	case string:
		return parseDeclarationString(v)
	case []byte:
		return parseDeclarationString(string(v))
	default:
		return DefaultWarrantyMonths
	}
}

// DaysToMonths converts a day count to whole months, rounding up so a period
// declared in days never shortens the warranty.
func DaysToMonths(days float64) int {
	months := int(math.Ceil(days / 30))
	if months < 1 {
		return 1
	}
	return months
}

// monthsFromNumber treats a bare number as months. Non-positive declarations
// are meaningless and fall back to the default.
func monthsFromNumber(n float64) int {
	months := int(math.Round(n))
	if months < 1 {
		return DefaultWarrantyMonths
	}
	return months
}

func parseDeclarationString(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultWarrantyMonths
	}

	match := declNumber.FindString(s)
	if match == "" {
		return DefaultWarrantyMonths
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return DefaultWarrantyMonths
	}

	switch {
	case strings.Contains(s, "year"):
		return monthsFromNumber(n * 12)
	case strings.Contains(s, "month"):
		return monthsFromNumber(n)
	case strings.Contains(s, "day"):
		if n <= 0 {
			return DefaultWarrantyMonths
		}
		return DaysToMonths(n)
	default:
		// a number with no recognized unit token is taken as months
		return monthsFromNumber(n)
	}
}
