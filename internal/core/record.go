package core

import (
	"errors"
	"time"
)

type (
	// Money is an amount in cents. Calculations always happen on cents to
	// avoid floating-point drift; decimal strings exist only at the edges.
	Money struct {
		Cents int64
	}

	// Record is one expense entry. ID is assigned by the store at creation
	// and never changes; Date is a calendar day in YYYY-MM-DD form.
	Record struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Date        string    `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Candidate is the caller-supplied field set proposed for creation.
	// All fields arrive as raw strings and are validated at the store
	// boundary before a Record is built from them.
	Candidate struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}

	// Patch is a partial field set for updates. Nil fields are left
	// untouched; present fields are validated before any merge happens.
	Patch struct {
		Description *string `json:"description"`
		Amount      *string `json:"amount"`
		Category    *string `json:"category"`
		Date        *string `json:"date"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// IsEmpty reports whether the patch carries no fields at all. An empty
// patch is still a legal update: it refreshes UpdatedAt and nothing else.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
