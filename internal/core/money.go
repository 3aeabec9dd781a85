// Package core provides the domain types shared by the projection engine,
// storage and transport layers: monetary amounts in integer cents, calendar
// months, accounts, transactions, budgets and categories.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency-agnostic amount in integer cents. All engine arithmetic
// happens on cents so repeated aggregation cannot accumulate float drift.
type Money struct {
	Cents int64 `json:"cents"`
}

// CentEpsilon is the smallest delta treated as a real change. Anything below
// one cent is display noise, not a movement of money.
const CentEpsilon int64 = 1

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string such as "12.34" or "12,34" into cents,
// rounding half-up on the third decimal place. Only strictly positive amounts
// are accepted; transaction kind decides the sign downstream.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.BigInt().BitLen() > 62 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// IsZero reports whether the amount is exactly zero cents.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount as a two-decimal value for serialization.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount as a plain decimal, e.g. "-12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Validate rejects non-positive amounts. Stored transaction amounts are always
// positive; signs are applied by the aggregation rules.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// PercentOf returns m/total expressed in percent (100 = full budget). The
// caller guards against a zero total.
func (m Money) PercentOf(total Money) float64 {
	part := decimal.New(m.Cents, 0)
	whole := decimal.New(total.Cents, 0)
	pct, _ := part.Div(whole).Mul(decimal.New(100, 0)).Float64()
	return pct
}
