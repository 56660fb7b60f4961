package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// Blob keys. The records blob is the only one the store owns; budget and
// display settings live beside it under their own keys and must never
// collide with it.
const (
	RecordsKey  = "records"
	BudgetKey   = "budget"
	SettingsKey = "settings"
)

// ErrCorruptBlob marks a blob that was present but failed to decode.
// Callers get an empty collection alongside it, so they can keep running
// while still telling corruption apart from "no data yet".
var ErrCorruptBlob = errors.New("corrupt blob")

// RecordStore persists the whole record collection as one JSON blob
// under RecordsKey.
type RecordStore struct {
	kv *KV
}

func NewRecordStore(kv *KV) *RecordStore {
	return &RecordStore{kv: kv}
}

// Load reads the collection. An absent blob yields an empty collection;
// a blob that fails to decode yields an empty collection and an error
// wrapping ErrCorruptBlob.
func (s *RecordStore) Load(ctx context.Context) ([]core.Record, error) {
	raw, ok, err := s.kv.Get(ctx, RecordsKey)
	if err != nil {
		return nil, fmt.Errorf("load records blob: %w", err)
	}
	if !ok {
		return []core.Record{}, nil
	}

	var records []core.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return []core.Record{}, fmt.Errorf("%w: decode records: %v", ErrCorruptBlob, err)
	}
	if records == nil {
		records = []core.Record{}
	}

	slog.DebugContext(ctx, "Loaded record collection", "count", len(records))
	return records, nil
}

// Save serializes the entire collection and overwrites the blob. The
// write is a single upsert, atomic from the caller's point of view.
func (s *RecordStore) Save(ctx context.Context, records []core.Record) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := s.kv.Put(ctx, RecordsKey, raw); err != nil {
		return fmt.Errorf("save records blob: %w", err)
	}
	return nil
}
