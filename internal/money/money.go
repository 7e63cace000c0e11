// Package money turns loosely formatted spreadsheet values into numbers.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Normalize strips everything except digits, '.' and '-' from v and parses
// the remainder as a float. Anything that does not parse yields 0.
func Normalize(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case string:
		return parse(n)
	case fmt.Stringer:
		return parse(n.String())
	default:
		return parse(fmt.Sprint(v))
	}
}

func parse(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
