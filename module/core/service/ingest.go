package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
)

// IngestService gates incoming samples before they reach the tracker. A sample
// is dropped when its coordinate is malformed, its accuracy is worse than the
// configured maximum, or it is not strictly newer than the last accepted
// sample for the pet. Accepted samples update the last-known cache, are
// persisted best-effort, and are forwarded synchronously to the tracker.
type IngestService struct {
	tracker      *TrackerService
	cache        *SampleCache
	history      database.HistoryRepository
	maxAccuracyM float64
	log          *logrus.Logger

	// serializes the check-then-store acceptance step so per-pet ordering
	// cannot be violated by concurrent submissions
	mu sync.Mutex
}

func NewIngestService(tracker *TrackerService, cache *SampleCache, history database.HistoryRepository, maxAccuracyM float64, log *logrus.Logger) *IngestService {
	return &IngestService{
		tracker:      tracker,
		cache:        cache,
		history:      history,
		maxAccuracyM: maxAccuracyM,
		log:          log,
	}
}

func (s *IngestService) Submit(ctx context.Context, sample domain.LocationSample) error {
	if err := sample.Coordinate.Validate(); err != nil {
		s.reject(sample, err)
		return err
	}
	if sample.AccuracyM > s.maxAccuracyM {
		err := fmt.Errorf("accuracy %.1fm: %w", sample.AccuracyM, domain.ErrLowAccuracy)
		s.reject(sample, err)
		return err
	}

	s.mu.Lock()
	if last, ok := s.cache.Latest(sample.PetID); ok && !sample.CapturedAt.After(last.CapturedAt) {
		s.mu.Unlock()
		err := fmt.Errorf("captured at %s: %w", sample.CapturedAt.Format("15:04:05.000"), domain.ErrStaleSample)
		s.reject(sample, err)
		return err
	}
	s.cache.Put(sample)
	s.mu.Unlock()

	if s.history != nil {
		if err := s.history.InsertSample(ctx, &sample); err != nil {
			s.log.WithError(err).WithField("pet_id", sample.PetID).Warn("sample persist failed")
		}
	}

	s.tracker.Evaluate(ctx, sample)
	return nil
}

// LastKnown exposes the last accepted sample for a pet.
func (s *IngestService) LastKnown(petID string) (domain.LocationSample, bool) {
	return s.cache.Latest(petID)
}

func (s *IngestService) reject(sample domain.LocationSample, err error) {
	s.log.WithError(err).WithFields(logrus.Fields{
		"pet_id":    sample.PetID,
		"simulated": sample.Simulated,
	}).Info("sample rejected")
}
