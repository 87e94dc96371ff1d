// Package money implements the fixed-point decimal arithmetic used by the
// order book. No floating-point value ever participates in a matching
// decision; a Price is marshaled to JSON as fixed two-digit decimal text
// built from its integer cents.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotPositive    = errors.New("price must be strictly positive")
	ErrNotRepresented = errors.New("price is not exactly representable with two fractional digits")
)

// Price is a strictly positive price normalized to two fractional digits,
// stored as hundredths of a unit (cents). Comparisons between Prices are
// plain integer comparisons — no floating-point arithmetic ever
// participates in a matching decision.
type Price int64

// Parse accepts either a number or a decimal string, truncates toward
// zero to two fractional digits, and rejects non-positive values and
// strings that are not decimals. Extra fractional digits are truncated,
// not rejected.
func Parse(raw interface{}) (Price, error) {
	var d decimal.Decimal
	switch v := raw.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return 0, fmt.Errorf("invalid decimal price %q: %w", v, err)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case decimal.Decimal:
		d = v
	default:
		return 0, fmt.Errorf("unsupported price type %T", raw)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (Price, error) {
	truncated := d.Truncate(2)
	cents := truncated.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, ErrNotRepresented
	}
	if cents.Sign() <= 0 {
		return 0, ErrNotPositive
	}
	return Price(cents.IntPart()), nil
}

// Normalize re-applies truncation to an already-constructed Price. Since
// Price is always stored post-truncation, this is idempotent by
// construction.
func (p Price) Normalize() Price {
	return p
}

// Float64 converts to a float for the JSON display boundary only.
func (p Price) Float64() float64 {
	return decimal.New(int64(p), -2).InexactFloat64()
}

// String renders the canonical two-fractional-digit form, e.g. "100.00".
func (p Price) String() string {
	return decimal.New(int64(p), -2).StringFixed(2)
}

// MarshalJSON emits the price as a bare JSON number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(p), -2).StringFixed(2)), nil
}
