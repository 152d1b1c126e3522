package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// SchedulerService re-evaluates every tracked pet against its last-known
// sample at a fixed cadence, independent of ingestion. This bounds detection
// latency for zone edits that arrive while no fresh fix does. Pets without an
// accepted sample are skipped.
type SchedulerService struct {
	tracker  *TrackerService
	cache    *SampleCache
	interval time.Duration
	log      *logrus.Logger

	inFlight atomic.Bool
}

func NewSchedulerService(tracker *TrackerService, cache *SampleCache, interval time.Duration, log *logrus.Logger) *SchedulerService {
	return &SchedulerService{
		tracker:  tracker,
		cache:    cache,
		interval: interval,
		log:      log,
	}
}

// Run ticks until ctx is cancelled. A tick that would overlap a still-running
// one is skipped rather than queued, so backlog stays bounded.
func (s *SchedulerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one re-evaluation pass. Exported so callers can trigger it
// manually, e.g. from tests or the HTTP API.
func (s *SchedulerService) Tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn("scheduler tick overrun, skipping")
		return
	}
	defer s.inFlight.Store(false)

	for _, petID := range s.tracker.TrackedPets() {
		sample, ok := s.cache.Latest(petID)
		if !ok {
			continue
		}
		s.tracker.Evaluate(ctx, sample)
	}
}
