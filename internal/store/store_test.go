package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// fakePersister records saves and can be told to fail the next one.
type fakePersister struct {
	loaded   []core.Record
	loadErr  error
	saved    [][]core.Record
	failNext bool
}

func (f *fakePersister) Load(ctx context.Context) ([]core.Record, error) {
	return f.loaded, f.loadErr
}

func (f *fakePersister) Save(ctx context.Context, records []core.Record) error {
	if f.failNext {
		f.failNext = false
		return errors.New("quota exceeded")
	}
	snapshot := make([]core.Record, len(records))
	copy(snapshot, records)
	f.saved = append(f.saved, snapshot)
	return nil
}

func newTestStore(t *testing.T, p *fakePersister) *Store {
	t.Helper()
	if p.loaded == nil {
		p.loaded = []core.Record{}
	}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func validCandidate() core.Candidate {
	return core.Candidate{
		Description: "Lunch at cafeteria",
		Amount:      "12.5",
		Category:    "Food",
		Date:        "2025-10-14",
	}
}

func TestCreateAppendsAndPersists(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("create must assign an id")
	}
	if rec.Description != "Lunch at cafeteria" || rec.Amount.Cents != 1250 ||
		rec.Category != "Food" || rec.Date != "2025-10-14" {
		t.Fatalf("stored record diverged from candidate: %+v", rec)
	}
	if rec.CreatedAt.IsZero() || !rec.UpdatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("timestamps: createdAt=%v updatedAt=%v", rec.CreatedAt, rec.UpdatedAt)
	}

	all := s.GetAll()
	if len(all) != 1 || all[0].ID != rec.ID {
		t.Fatalf("getAll after create: %+v", all)
	}
	if len(p.saved) != 1 || len(p.saved[0]) != 1 {
		t.Fatalf("create must persist the full collection once, saves=%d", len(p.saved))
	}
}

func TestCreateIDsUniqueWithinSameClockTick(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	frozen := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		rec, err := s.Create(context.Background(), validCandidate())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[rec.ID] {
			t.Fatalf("duplicate id %q on create %d", rec.ID, i)
		}
		seen[rec.ID] = true
	}
}

func TestCreateValidationFailureMutatesNothing(t *testing.T) {
	cases := []struct {
		name  string
		field string
		mod   func(*core.Candidate)
	}{
		{"digit in description", "description", func(c *core.Candidate) { c.Description = "Lunch 2day" }},
		{"repeated word", "description", func(c *core.Candidate) { c.Description = "the the lunch" }},
		{"negative amount", "amount", func(c *core.Candidate) { c.Amount = "-1" }},
		{"leading zero", "amount", func(c *core.Candidate) { c.Amount = "01" }},
		{"impossible date", "date", func(c *core.Candidate) { c.Date = "2025-02-30" }},
		{"bad category", "category", func(c *core.Candidate) { c.Category = "Food2" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePersister{}
			s := newTestStore(t, p)
			c := validCandidate()
			tc.mod(&c)

			_, err := s.Create(context.Background(), c)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
			if verr.Reason == "" {
				t.Fatal("validation errors must carry a reason")
			}
			if len(s.GetAll()) != 0 || len(p.saved) != 0 {
				t.Fatal("failed validation must not mutate or persist")
			}
		})
	}
}

func TestCreateRollsBackOnSaveFailure(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	p.failNext = true

	_, err := s.Create(context.Background(), validCandidate())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(s.GetAll()) != 0 {
		t.Fatal("failed save must roll back the in-memory append")
	}

	// The store stays usable after a failed write.
	if _, err := s.Create(context.Background(), validCandidate()); err != nil {
		t.Fatalf("create after failed save: %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	removed, err := s.DeleteByID(ctx, rec.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	for _, r := range s.GetAll() {
		if r.ID == rec.ID {
			t.Fatal("deleted record still present")
		}
	}

	// Second delete of the same id is a no-op, not an error.
	removed, err = s.DeleteByID(ctx, rec.ID)
	if err != nil || removed {
		t.Fatalf("second delete: removed=%v err=%v", removed, err)
	}
}

func TestDeleteRollsBackOnSaveFailure(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p.failNext = true
	removed, err := s.DeleteByID(ctx, rec.ID)
	var perr *PersistenceError
	if !errors.As(err, &perr) || removed {
		t.Fatalf("expected PersistenceError, got removed=%v err=%v", removed, err)
	}
	if len(s.GetAll()) != 1 {
		t.Fatal("failed save must restore the deleted record")
	}
}

func TestUpdateMergesAndRefreshesUpdatedAt(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	clock := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock = clock.Add(time.Minute)
	amount := "20"
	updated, err := s.Update(ctx, rec.ID, core.Patch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 2000 {
		t.Fatalf("amount not merged: %d", updated.Amount.Cents)
	}
	if updated.Description != rec.Description || updated.Category != rec.Category || updated.Date != rec.Date {
		t.Fatal("unpatched fields must stay unchanged")
	}
	if !updated.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatal("createdAt must never change")
	}
	if !updated.UpdatedAt.After(rec.UpdatedAt) {
		t.Fatal("updatedAt must be refreshed")
	}
}

func TestUpdateEmptyPatchStillRefreshesUpdatedAt(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	clock := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock = clock.Add(time.Minute)
	updated, err := s.Update(ctx, rec.ID, core.Patch{})
	if err != nil {
		t.Fatalf("empty patch update: %v", err)
	}
	if updated.Description != rec.Description || updated.Amount != rec.Amount ||
		updated.Category != rec.Category || updated.Date != rec.Date {
		t.Fatal("empty patch must leave data fields unchanged")
	}
	if !updated.UpdatedAt.After(rec.UpdatedAt) {
		t.Fatal("empty patch must still refresh updatedAt")
	}
}

func TestUpdateNotFound(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	_, err := s.Update(context.Background(), "rec_nope", core.Patch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateValidationFailureLeavesRecordIntact(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "still fine"
	bad := "12.555"
	_, err = s.Update(ctx, rec.ID, core.Patch{Description: &desc, Amount: &bad})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got := s.GetAll()[0]
	if got.Description != rec.Description || got.Amount != rec.Amount || !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Fatal("no partial merge may happen on validation failure")
	}
}

func TestUpdateRollsBackOnSaveFailure(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	rec, err := s.Create(ctx, validCandidate())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p.failNext = true
	amount := "99"
	_, err = s.Update(ctx, rec.ID, core.Patch{Amount: &amount})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	got := s.GetAll()[0]
	if got.Amount != rec.Amount || !got.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Fatal("failed save must restore the previous record state")
	}
}

func TestOpenWithCorruptBlobStartsEmpty(t *testing.T) {
	p := &fakePersister{
		loaded:  []core.Record{},
		loadErr: fmt.Errorf("%w: decode records: boom", storage.ErrCorruptBlob),
	}
	s, err := Open(context.Background(), p)
	if err != nil {
		t.Fatalf("open with corrupt blob should recover, got %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("expected empty collection, got %d", s.Count())
	}
}

func TestOpenPropagatesMediumFailure(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("disk on fire")}
	if _, err := Open(context.Background(), p); err == nil {
		t.Fatal("a real medium failure on load must propagate")
	}
}

func TestSearch(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)
	ctx := context.Background()

	candidates := []core.Candidate{
		{Description: "Lunch at cafeteria", Amount: "12.5", Category: "Food", Date: "2025-10-14"},
		{Description: "Bus ticket", Amount: "3", Category: "Transport", Date: "2025-10-13"},
		{Description: "Concert entry", Amount: "40", Category: "Fun", Date: "2025-10-12"},
	}
	for _, c := range candidates {
		if _, err := s.Create(ctx, c); err != nil {
			t.Fatalf("create %q: %v", c.Description, err)
		}
	}

	if got := s.Search(""); len(got) != 3 {
		t.Fatalf("blank pattern should return everything, got %d", len(got))
	}
	if got := s.Search("lun.h"); len(got) != 1 || got[0].Description != "Lunch at cafeteria" {
		t.Fatalf("pattern search: %+v", got)
	}
	if got := s.Search("transport"); len(got) != 1 {
		t.Fatalf("category search should be case-insensitive, got %d", len(got))
	}
	// A broken pattern degrades to a literal match instead of panicking.
	if got := s.Search("("); len(got) != 0 {
		t.Fatalf("literal fallback: expected no matches, got %d", len(got))
	}
}

func TestGetAllReturnsACopy(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(t, p)

	if _, err := s.Create(context.Background(), validCandidate()); err != nil {
		t.Fatalf("create: %v", err)
	}
	all := s.GetAll()
	all[0].Description = "tampered"
	if s.GetAll()[0].Description == "tampered" {
		t.Fatal("callers must not be able to mutate the collection through GetAll")
	}
}
