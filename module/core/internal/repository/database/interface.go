package database

import (
	"context"

	"github.com/petfence/petfence/module/core/domain"
)

// HistoryRepository is the best-effort sink for accepted samples and confirmed
// transition events. Write failures never affect membership state.
type HistoryRepository interface {
	InsertSample(ctx context.Context, sample *domain.LocationSample) error
	InsertEvent(ctx context.Context, ev *domain.TransitionEvent) error
	GetSampleHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error)
	GetEvents(ctx context.Context, petID string) ([]domain.TransitionEvent, error)
}

// ZoneRepository mirrors the in-memory zone directory so it survives restarts.
type ZoneRepository interface {
	Upsert(ctx context.Context, zone *domain.SafeZone) error
	Delete(ctx context.Context, zoneID string) error
	ListActive(ctx context.Context) ([]domain.SafeZone, error)
}
