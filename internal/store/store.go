// Package store owns the canonical in-memory record collection. It is
// the only component allowed to mutate it: every mutation runs
// validate, mutate, persist to completion before returning, and a
// failed persist rolls the collection back so memory and disk never
// silently diverge.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/validate"
)

// Persister is the durable side of the store: the whole collection in,
// the whole collection out.
type Persister interface {
	Load(ctx context.Context) ([]core.Record, error)
	Save(ctx context.Context, records []core.Record) error
}

// Store holds the canonical collection, loaded once at Open and kept
// for the life of the process. Callers hold an explicit handle; there
// is no package-level singleton.
type Store struct {
	mu        sync.Mutex
	persister Persister
	records   []core.Record
	seq       uint64

	now func() time.Time // swapped in tests
}

// Open loads the collection from the persister. A corrupt blob is
// logged and treated as an empty collection rather than refusing to
// start.
func Open(ctx context.Context, p Persister) (*Store, error) {
	records, err := p.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCorruptBlob) {
			return nil, fmt.Errorf("load collection: %w", err)
		}
		slog.WarnContext(ctx, "Stored collection is corrupt, starting empty", "error", err)
		records = []core.Record{}
	}
	return &Store{
		persister: p,
		records:   records,
		now:       time.Now,
	}, nil
}

// GetAll returns the collection in insertion order. The slice is a
// copy; mutating it has no effect on the store.
func (s *Store) GetAll() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the number of records in the collection.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Create validates every candidate field, assigns id and timestamps,
// appends, and persists. The store re-validates even when the caller
// already has, so a bad candidate can never reach the collection.
func (s *Store) Create(ctx context.Context, c core.Candidate) (core.Record, error) {
	if err := validateCandidate(c); err != nil {
		return core.Record{}, err
	}
	amount, err := core.ParseAmount(c.Amount)
	if err != nil {
		return core.Record{}, &ValidationError{Field: "amount", Reason: "must be a non-negative number with at most two decimals"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := core.Record{
		ID:          s.nextID(now),
		Description: validate.Normalize(c.Description),
		Amount:      amount,
		Category:    strings.TrimSpace(c.Category),
		Date:        strings.TrimSpace(c.Date),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.records = append(s.records, rec)
	if err := s.persister.Save(ctx, s.records); err != nil {
		s.records = s.records[:len(s.records)-1]
		return core.Record{}, &PersistenceError{Err: err}
	}

	slog.InfoContext(ctx, "Record created", "record_id", rec.ID, "category", rec.Category, "amount_cents", rec.Amount.Cents)
	return rec, nil
}

// Update validates the fields present in the patch, merges them into
// the existing record, refreshes UpdatedAt, and persists. No partial
// merge happens on validation failure; an empty patch still refreshes
// UpdatedAt.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Record, error) {
	if err := validatePatch(p); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Record{}, ErrNotFound
	}

	prev := s.records[idx]
	rec := prev
	if p.Description != nil {
		rec.Description = validate.Normalize(*p.Description)
	}
	if p.Amount != nil {
		amount, err := core.ParseAmount(*p.Amount)
		if err != nil {
			return core.Record{}, &ValidationError{Field: "amount", Reason: "must be a non-negative number with at most two decimals"}
		}
		rec.Amount = amount
	}
	if p.Category != nil {
		rec.Category = strings.TrimSpace(*p.Category)
	}
	if p.Date != nil {
		rec.Date = strings.TrimSpace(*p.Date)
	}
	rec.UpdatedAt = s.now().UTC()

	s.records[idx] = rec
	if err := s.persister.Save(ctx, s.records); err != nil {
		s.records[idx] = prev
		return core.Record{}, &PersistenceError{Err: err}
	}

	slog.InfoContext(ctx, "Record updated", "record_id", rec.ID)
	return rec, nil
}

// DeleteByID removes the matching record and persists. A missing id is
// a no-op reported as (false, nil), not an error.
func (s *Store) DeleteByID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	snapshot := make([]core.Record, len(s.records))
	copy(snapshot, s.records)

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	if err := s.persister.Save(ctx, s.records); err != nil {
		s.records = snapshot
		return false, &PersistenceError{Err: err}
	}

	slog.InfoContext(ctx, "Record deleted", "record_id", id)
	return true, nil
}

// Search filters the collection with the safe pattern compiler: valid
// patterns match as patterns, broken ones as literal text, blank input
// matches everything. Description and category are both searched.
func (s *Store) Search(pattern string) []core.Record {
	all := s.GetAll()
	re := validate.CompilePattern(pattern)
	if re == nil {
		return all
	}
	out := make([]core.Record, 0, len(all))
	for _, r := range all {
		if re.MatchString(r.Description) || re.MatchString(r.Category) {
			out = append(out, r)
		}
	}
	return out
}

// nextID builds an id unique across the collection's lifetime. The
// monotonic counter disambiguates creates landing on the same
// millisecond; the timestamp alone is not enough.
func (s *Store) nextID(now time.Time) string {
	s.seq++
	return fmt.Sprintf("rec_%d_%d", now.UnixMilli(), s.seq)
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func validateCandidate(c core.Candidate) error {
	if r := validate.Description(c.Description); !r.OK {
		return &ValidationError{Field: "description", Reason: r.Message}
	}
	if r := validate.Amount(c.Amount); !r.OK {
		return &ValidationError{Field: "amount", Reason: r.Message}
	}
	if r := validate.Category(c.Category); !r.OK {
		return &ValidationError{Field: "category", Reason: r.Message}
	}
	if r := validate.Date(c.Date); !r.OK {
		return &ValidationError{Field: "date", Reason: r.Message}
	}
	return nil
}

func validatePatch(p core.Patch) error {
	if p.Description != nil {
		if r := validate.Description(*p.Description); !r.OK {
			return &ValidationError{Field: "description", Reason: r.Message}
		}
	}
	if p.Amount != nil {
		if r := validate.Amount(*p.Amount); !r.OK {
			return &ValidationError{Field: "amount", Reason: r.Message}
		}
	}
	if p.Category != nil {
		if r := validate.Category(*p.Category); !r.OK {
			return &ValidationError{Field: "category", Reason: r.Message}
		}
	}
	if p.Date != nil {
		if r := validate.Date(*p.Date); !r.OK {
			return &ValidationError{Field: "date", Reason: r.Message}
		}
	}
	return nil
}
