// Package settings manages the two auxiliary blobs that live beside the
// record collection: the budget threshold and the display settings.
// They share the storage medium with the records but are keyed
// independently and never touch the records blob.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// KV is the slice of the storage surface settings need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Budget is a spending threshold in cents. Zero means no budget is set.
type Budget struct {
	ThresholdCents int64 `json:"thresholdCents"`
}

// Display holds the presentation-side currency settings. The rates are
// user-supplied and checked for format only; no conversion correctness
// is guaranteed.
type Display struct {
	BaseCurrency string `json:"baseCurrency"`
	RateOne      string `json:"rateOne"`
	RateTwo      string `json:"rateTwo"`
}

var (
	ErrInvalidThreshold = errors.New("budget threshold cannot be negative")
	ErrInvalidCurrency  = errors.New("base currency must be a three-letter code")
	ErrInvalidRate      = errors.New("conversion rate must be a positive decimal")

	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	ratePattern     = regexp.MustCompile(`^(0|[1-9]\d*)(\.\d+)?$`)
)

// Service reads and writes the auxiliary blobs.
type Service struct {
	kv KV
}

func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

// Budget returns the stored threshold, or the zero Budget when none has
// been set yet.
func (s *Service) Budget(ctx context.Context) (Budget, error) {
	var b Budget
	if err := s.get(ctx, storage.BudgetKey, &b); err != nil {
		return Budget{}, err
	}
	return b, nil
}

func (s *Service) SetBudget(ctx context.Context, b Budget) error {
	if b.ThresholdCents < 0 {
		return ErrInvalidThreshold
	}
	return s.put(ctx, storage.BudgetKey, b)
}

// Display returns the stored display settings, or sensible defaults
// when none have been saved yet.
func (s *Service) Display(ctx context.Context) (Display, error) {
	d := Display{BaseCurrency: "USD", RateOne: "1", RateTwo: "1"}
	if err := s.get(ctx, storage.SettingsKey, &d); err != nil {
		return Display{}, err
	}
	return d, nil
}

func (s *Service) SetDisplay(ctx context.Context, d Display) error {
	if !currencyPattern.MatchString(d.BaseCurrency) {
		return ErrInvalidCurrency
	}
	for _, rate := range []string{d.RateOne, d.RateTwo} {
		if !ratePattern.MatchString(rate) || rate == "0" {
			return ErrInvalidRate
		}
	}
	return s.put(ctx, storage.SettingsKey, d)
}

// OverBudget reports whether total exceeds the threshold. An unset
// budget is never exceeded.
func (b Budget) OverBudget(total core.Money) bool {
	return b.ThresholdCents > 0 && total.Cents > b.ThresholdCents
}

func (s *Service) get(ctx context.Context, key string, v any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s blob: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s blob: %w", key, err)
	}
	return nil
}

func (s *Service) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s blob: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s blob: %w", key, err)
	}
	return nil
}
