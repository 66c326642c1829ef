package services

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseAmount coerces user or stored input into a number. Strings must be plain
// decimals; anything else that does not parse (nil, "", "abc", "0x10", "1_000",
// booleans, NaN, ±Inf) becomes 0. Partially-filled rows are normal and are
// never reported as errors.
func ParseAmount(v any) float64 {
	switch t := v.(type) {
	case bool:
		return 0
	case string:
		t = strings.TrimSpace(t)
		if !decimalPattern.MatchString(t) {
			return 0
		}
		v = t
	}
	f, err := cast.ToFloat64E(v)
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

// RoundMoney rounds to cents. Only applied to final figures, never while summing.
func RoundMoney(amount float64) float64 {
	amount = finite(amount)
	if r := math.Round(amount*100) / 100; !math.IsInf(r, 0) {
		return r
	}
	return amount
}
