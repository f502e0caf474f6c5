package nav

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

// storedPlaces is the scale of every derived column.
const storedPlaces = 2

// maxStored is the largest magnitude a numeric(12, 2) derived column holds.
var maxStored = decimal.RequireFromString("9999999999.99")

// fits rejects a derived value its column cannot store, so an oversized
// result fails as a computation rather than as a database write.
func fits(d decimal.Decimal) (decimal.Decimal, error) {
	if d.Abs().GreaterThan(maxStored) {
		return decimal.Decimal{}, fmt.Errorf("%w: value %s exceeds the stored range", domain.ErrComputation, d)
	}
	return d, nil
}

// round2 rounds v half away from zero to two decimals.
// The float is first converted through its shortest decimal representation,
// so 0.125 rounds to 0.13 rather than being subject to binary error.
func round2(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: non-finite value %v", domain.ErrComputation, v)
	}
	return fits(decimal.NewFromFloat(v).Round(storedPlaces))
}

// Round2 is the exported form of the rounding rule for callers outside the
// package that present or compare derived values. Non-finite input is
// returned unchanged.
func Round2(v float64) float64 {
	d, err := round2(v)
	if err != nil {
		return v
	}
	return d.InexactFloat64()
}

// hours converts a duration to fractional hours, rounded.
func hours(seconds float64) (decimal.Decimal, error) {
	return round2(seconds / 3600)
}

// speed divides distance by elapsed hours, rounded; ok is false when
// elapsed is not positive.
func speed(distance, elapsed decimal.Decimal) (kn decimal.Decimal, ok bool, err error) {
	if !elapsed.IsPositive() {
		return decimal.Decimal{}, false, nil
	}
	kn, err = fits(distance.DivRound(elapsed, storedPlaces))
	return kn, err == nil, err
}

func ptr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}
