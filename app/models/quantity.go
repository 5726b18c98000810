package models

import (
	"math"
	"strconv"
	"strings"
)

// coerceQuantity turns a decoded JSON quantity into an int: numbers are
// truncated, numeric strings parsed, and a missing value defaults to 1.
// Unparseable values yield 0 so callers drop the line.
func coerceQuantity(v any) int {
	switch t := v.(type) {
	case nil:
		return 1
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}
