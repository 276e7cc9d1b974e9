package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imagedrop/service/internal/relay"
)

// Limits for ListRecent.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ErrDisabled is returned by List when no database is configured.
var ErrDisabled = errors.New("upload ledger disabled")

// Store is the persistence the Service needs. *Repository satisfies it.
type Store interface {
	InsertMany(ctx context.Context, records []Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Service turns relay outcomes into ledger records.
type Service struct {
	store Store
	now   func() time.Time
}

var _ relay.Recorder = (*Service)(nil)

// NewService creates a ledger Service. A nil store disables the ledger.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Enabled reports whether a store is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// Record implements relay.Recorder.
func (s *Service) Record(ctx context.Context, requestID string, outcome relay.Outcome) error {
	if !s.Enabled() || len(outcome.Results) == 0 {
		return nil
	}

	now := s.now().UTC()
	records := make([]Record, len(outcome.Results))
	for i, res := range outcome.Results {
		rec := Record{
			ID:        uuid.New(),
			RequestID: requestID,
			Field:     res.Field,
			Filename:  res.Filename,
			ObjectKey: res.Key,
			URL:       res.URL,
			SizeBytes: res.Size,
			Status:    string(res.Status),
			CreatedAt: now,
		}
		if res.Err != nil {
			msg := res.Err.Error()
			rec.Error = &msg
		}
		records[i] = rec
	}

	if err := s.store.InsertMany(ctx, records); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// List returns recent records. limit is clamped to [1, MaxLimit]; zero or
// negative means DefaultLimit.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return s.store.ListRecent(ctx, limit)
}
