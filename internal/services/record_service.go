// Package services orchestrates record mutations with the optional
// change feed: every successful store mutation is followed by a
// best-effort event publish.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/store"
)

// RecordService wraps the store and publishes a RecordEvent after each
// successful mutation. A publish failure is logged and never fails the
// mutation: the record is already durable locally.
type RecordService struct {
	store  *store.Store
	events *events.Client // nil when AMQP is not configured
}

func NewRecordService(st *store.Store, eventsClient *events.Client) *RecordService {
	return &RecordService{
		store:  st,
		events: eventsClient,
	}
}

func (s *RecordService) GetAll() []core.Record {
	return s.store.GetAll()
}

func (s *RecordService) Search(pattern string) []core.Record {
	return s.store.Search(pattern)
}

func (s *RecordService) Create(ctx context.Context, c core.Candidate) (core.Record, error) {
	rec, err := s.store.Create(ctx, c)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, events.OpCreated, rec.ID)
	return rec, nil
}

func (s *RecordService) Update(ctx context.Context, id string, p core.Patch) (core.Record, error) {
	rec, err := s.store.Update(ctx, id, p)
	if err != nil {
		return core.Record{}, err
	}
	s.publish(ctx, events.OpUpdated, rec.ID)
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.publish(ctx, events.OpDeleted, id)
	}
	return removed, nil
}

func (s *RecordService) publish(ctx context.Context, op, recordID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, events.NewRecordEvent(op, recordID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"error", err, "op", op, "record_id", recordID)
	}
}

// Close releases the event client, if any.
func (s *RecordService) Close() error {
	if s.events == nil {
		return nil
	}
	if err := s.events.Close(); err != nil {
		return fmt.Errorf("close events client: %w", err)
	}
	return nil
}
