package service

import (
	"sync"

	"github.com/petfence/petfence/module/core/domain"
)

// SampleCache holds the last accepted sample per pet. The ingestor writes it,
// the scheduler and zone edits read it to re-evaluate without a fresh fix.
type SampleCache struct {
	mu     sync.RWMutex
	latest map[string]domain.LocationSample
}

func NewSampleCache() *SampleCache {
	return &SampleCache{latest: make(map[string]domain.LocationSample)}
}

func (c *SampleCache) Put(sample domain.LocationSample) {
	c.mu.Lock()
	c.latest[sample.PetID] = sample
	c.mu.Unlock()
}

func (c *SampleCache) Latest(petID string) (domain.LocationSample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.latest[petID]
	return s, ok
}

func (c *SampleCache) Forget(petID string) {
	c.mu.Lock()
	delete(c.latest, petID)
	c.mu.Unlock()
}
