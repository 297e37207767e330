// Package core provides money parsing and handling utilities.
//
// This file contains the Money type and the parser used to coerce user
// supplied amounts into non-negative decimals.
package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount. It serializes as a bare JSON number and
// accepts numeric strings when decoding legacy data. Amounts entered by
// users go through ParseAmount and are never negative; derived values such
// as a net balance can be.
type Money struct {
	decimal.Decimal
}

// RawAmount is an amount as supplied by a caller, before coercion. It
// decodes from both JSON numbers and JSON strings.
type RawAmount string

// NewMoney builds a Money from a float, rounded to cents.
func NewMoney(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f).Round(2)}
}

// MustMoney parses s and panics on error. Intended for fixtures and tests.
func MustMoney(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseAmount converts a decimal string to Money rounded half-up to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs, exponents and anything that is not a plain decimal are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("3.50")   -> 3.5
//	ParseAmount("12.345") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return Money{}, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if r > unicode.MaxASCII || !unicode.IsDigit(r) {
				return Money{}, ErrInvalidAmount
			}
		}
	}
	intPart, fracPart := parts[0], ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart != "" {
		s = intPart + "." + fracPart
	} else {
		s = intPart
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d.Round(2)}, nil
}

// Coerce parses the raw amount into Money.
func (r RawAmount) Coerce() (Money, error) {
	return ParseAmount(string(r))
}

func (r *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return ErrInvalidAmount
	}
	*r = RawAmount(n.String())
	return nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Equal reports whether both amounts have the same value.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Float returns the amount as a float64 for display purposes.
// Use the decimal for calculations.
func (m Money) Float() float64 {
	return m.Decimal.InexactFloat64()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			*m = Money{}
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Decimal = d
	return nil
}
