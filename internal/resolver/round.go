package resolver

import (
	"github.com/shopspring/decimal"

	"pvt-resolver/internal/domain"
)

// Decimals is the number of decimal places kept on every output value.
const Decimals = 5

// exactExponent is small enough for decimal to hold any float64 without loss.
const exactExponent = -1074

// Round rounds v to Decimals places. Rounding applies to the exact binary value
// of v, with ties to even, so 1.234565 (stored just below the tie) gives 1.23456.
// Absent stays absent; a non-finite value becomes absent.
func Round(v *float64) *float64 {
	if v == nil || !domain.IsFinite(*v) {
		return nil
	}
	f, _ := decimal.NewFromFloatWithExponent(*v, exactExponent).RoundBank(Decimals).Float64()
	return &f
}

// RoundAll rounds every property.
func RoundAll(ps domain.Properties) domain.Properties {
	var out domain.Properties
	for i, v := range ps {
		out[i] = Round(v)
	}
	return out
}
