package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hance08/tally/internal/constants"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrAmountScale    = fmt.Errorf("amount has more than %d fractional digits", constants.AmountScale)
	ErrAmountRange    = errors.New("amount out of range")
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Amount is a fixed-point monetary value stored as an integer count of
// 1/10,000 units, so 1.5 is Amount(15000).
type Amount int64

// ParseAmount converts a decimal string such as "12.3456" into an Amount.
// Values with more than four significant fractional digits are rejected
// rather than rounded.
func ParseAmount(s string) (Amount, error) {
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("%w %q: exponent notation", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}

	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}

	if !d.Equal(d.Truncate(constants.AmountScale)) {
		return 0, fmt.Errorf("%w: %s", ErrAmountScale, s)
	}

	scaled := d.Shift(constants.AmountScale)
	if scaled.GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %s", ErrAmountRange, s)
	}

	return Amount(scaled.IntPart()), nil
}

// MustParseAmount is ParseAmount for literals known to be valid.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the exact decimal value of a.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -constants.AmountScale)
}

// String renders a with exactly four fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(constants.AmountScale)
}

// Add returns a+b, or ErrAmountRange when the sum does not fit in an Amount.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %s + %s", ErrAmountRange, a, b)
	}
	return sum, nil
}

func (a Amount) Neg() Amount {
	return -a
}

func (a Amount) IsNegative() bool {
	return a < 0
}
