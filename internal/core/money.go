// Package core holds the domain types shared by the store, the
// aggregator, and the persistence adapter: records, candidates, money.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to Money under the amount rule:
// zero or a positive integer without leading zeros, optionally followed
// by a dot and one or two digits. Anything else is rejected, including
// signs, a third decimal place, and decimal commas.
//
// Examples:
//
//	ParseAmount("12.5")   -> 1250 cents
//	ParseAmount("0")      -> 0 cents
//	ParseAmount("01")     -> error (leading zero)
//	ParseAmount("12.555") -> error (too many decimals)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	if intPart == "" {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidAmount
		}
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return Money{}, ErrInvalidAmount
	}
	if hasFrac {
		if len(fracPart) < 1 || len(fracPart) > 2 {
			return Money{}, ErrInvalidAmount
		}
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return Money{}, ErrInvalidAmount
			}
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	cents := iv * 100
	if hasFrac {
		cents += int64(fracPart[0]-'0') * 10
		if len(fracPart) == 2 {
			cents += int64(fracPart[1] - '0')
		}
	}
	return Money{Cents: cents}, nil
}

// String renders the amount as a plain decimal with two fractional
// digits, the shape the persisted blob and the API both use.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON emits the amount as a JSON number like 12.50.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string,
// so blobs written by older versions of the tracker still load.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return fmt.Errorf("unmarshal money %q: %w", s, err)
	}
	m.Cents = parsed.Cents
	return nil
}
