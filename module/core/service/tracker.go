package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
)

// TransitionSink receives confirmed transitions. Delivery is fire-and-forget:
// the tracker never sees a delivery failure and never rolls a transition back.
type TransitionSink interface {
	Dispatch(ctx context.Context, ev domain.TransitionEvent)
}

type pairKey struct {
	petID  string
	zoneID string
}

// pairState is locked exclusively per (pet, zone) pair so a live evaluation
// and a scheduler-triggered one cannot interleave. Distinct pairs evaluate in
// parallel.
type pairState struct {
	mu      sync.Mutex
	state   domain.MembershipState
	removed bool
}

// TrackerService owns the zone directory, the tracked-pet set and the
// per-pair membership state machine.
type TrackerService struct {
	mu      sync.RWMutex
	tracked map[string]struct{}
	zones   map[string]domain.SafeZone
	pairs   map[pairKey]*pairState

	cache     *SampleCache
	sink      TransitionSink
	zoneRepo  database.ZoneRepository
	threshold int
	log       *logrus.Logger
}

// NewTrackerService builds a tracker. threshold is the number of consecutive
// disagreeing evaluations needed to confirm a transition; values below 1 mean
// immediate confirmation. zoneRepo may be nil; when set, zone writes are
// mirrored to it best-effort.
func NewTrackerService(cache *SampleCache, sink TransitionSink, zoneRepo database.ZoneRepository, threshold int, log *logrus.Logger) *TrackerService {
	if threshold < 1 {
		threshold = 1
	}
	return &TrackerService{
		tracked:   make(map[string]struct{}),
		zones:     make(map[string]domain.SafeZone),
		pairs:     make(map[pairKey]*pairState),
		cache:     cache,
		sink:      sink,
		zoneRepo:  zoneRepo,
		threshold: threshold,
		log:       log,
	}
}

// StartTracking is idempotent.
func (t *TrackerService) StartTracking(petID string) {
	t.mu.Lock()
	t.tracked[petID] = struct{}{}
	t.mu.Unlock()
}

// StopTracking destroys all pair state for the pet. It is safe to call
// concurrently with an in-flight evaluation; once it returns, no further
// transition events are emitted for the pet.
func (t *TrackerService) StopTracking(petID string) {
	t.mu.Lock()
	delete(t.tracked, petID)
	var stopped []*pairState
	for key, ps := range t.pairs {
		if key.petID == petID {
			stopped = append(stopped, ps)
			delete(t.pairs, key)
		}
	}
	t.mu.Unlock()

	// Waits out any evaluation holding the pair lock.
	for _, ps := range stopped {
		ps.mu.Lock()
		ps.removed = true
		ps.mu.Unlock()
	}
	t.cache.Forget(petID)
}

// UpsertZone creates or edits a zone. Edits keep existing membership state but
// force an immediate re-evaluation against the new geometry using the pet's
// last-known sample.
func (t *TrackerService) UpsertZone(ctx context.Context, zone domain.SafeZone) error {
	if err := zone.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	t.zones[zone.ID] = zone
	t.mu.Unlock()

	if t.zoneRepo != nil {
		if err := t.zoneRepo.Upsert(ctx, &zone); err != nil {
			t.log.WithError(err).WithField("zone_id", zone.ID).Warn("zone mirror write failed")
		}
	}

	if zone.Active {
		if sample, ok := t.cache.Latest(zone.PetID); ok {
			t.evaluateZone(ctx, zone, sample)
		}
	}
	return nil
}

// DeleteZone removes the zone and destroys its pair state permanently.
func (t *TrackerService) DeleteZone(ctx context.Context, zoneID string) error {
	t.mu.Lock()
	zone, ok := t.zones[zoneID]
	if !ok {
		t.mu.Unlock()
		return domain.ErrUnknownZone
	}
	delete(t.zones, zoneID)
	ps := t.pairs[pairKey{zone.PetID, zoneID}]
	delete(t.pairs, pairKey{zone.PetID, zoneID})
	t.mu.Unlock()

	if ps != nil {
		ps.mu.Lock()
		ps.removed = true
		ps.mu.Unlock()
	}

	if t.zoneRepo != nil {
		if err := t.zoneRepo.Delete(ctx, zoneID); err != nil {
			t.log.WithError(err).WithField("zone_id", zoneID).Warn("zone mirror delete failed")
		}
	}
	return nil
}

// Evaluate runs the state machine for every active zone of the sample's pet.
// Samples for untracked pets are ignored.
func (t *TrackerService) Evaluate(ctx context.Context, sample domain.LocationSample) {
	t.mu.RLock()
	if _, ok := t.tracked[sample.PetID]; !ok {
		t.mu.RUnlock()
		return
	}
	var zones []domain.SafeZone
	for _, z := range t.zones {
		if z.Active && z.PetID == sample.PetID {
			zones = append(zones, z)
		}
	}
	t.mu.RUnlock()

	for _, z := range zones {
		t.evaluateZone(ctx, z, sample)
	}
}

// Membership returns a read-only snapshot for the pair. A pair that exists but
// was never evaluated reports unknown status.
func (t *TrackerService) Membership(petID, zoneID string) (domain.MembershipState, error) {
	t.mu.RLock()
	_, zoneOK := t.zones[zoneID]
	_, trackedOK := t.tracked[petID]
	ps := t.pairs[pairKey{petID, zoneID}]
	t.mu.RUnlock()

	if !zoneOK {
		return domain.MembershipState{}, domain.ErrUnknownZone
	}
	if !trackedOK {
		return domain.MembershipState{}, domain.ErrNotTracked
	}
	if ps == nil {
		return domain.MembershipState{PetID: petID, ZoneID: zoneID, Status: domain.MembershipUnknown}, nil
	}

	ps.mu.Lock()
	st := ps.state
	ps.mu.Unlock()
	return st, nil
}

// TrackedPets lists pets currently tracked, for the scheduler.
func (t *TrackerService) TrackedPets() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pets := make([]string, 0, len(t.tracked))
	for id := range t.tracked {
		pets = append(pets, id)
	}
	return pets
}

func (t *TrackerService) evaluateZone(ctx context.Context, zone domain.SafeZone, sample domain.LocationSample) {
	ps := t.pair(sample.PetID, zone.ID)
	if ps == nil {
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.removed {
		return
	}

	raw := EvaluateMembership(sample, zone)
	st := &ps.state
	st.LastEvaluated = time.Now()

	switch {
	case st.Status == domain.MembershipUnknown:
		// First evaluation establishes the baseline without an event.
		st.Status = raw
		st.LastTransition = sample.CapturedAt
	case raw == st.Status:
		st.Pending = 0
	default:
		st.Pending++
		if st.Pending < t.threshold {
			return
		}
		st.Pending = 0
		st.Status = raw
		st.LastTransition = sample.CapturedAt

		kind := domain.TransitionEntered
		if raw == domain.MembershipOutside {
			kind = domain.TransitionExited
		}
		ev := domain.TransitionEvent{
			PetID:      sample.PetID,
			ZoneID:     zone.ID,
			Kind:       kind,
			Sample:     sample,
			OccurredAt: time.Now(),
		}
		t.log.WithFields(logrus.Fields{
			"pet_id":  ev.PetID,
			"zone_id": ev.ZoneID,
			"kind":    ev.Kind,
		}).Info("zone transition confirmed")
		t.sink.Dispatch(ctx, ev)
	}
}

// pair returns the state for a (pet, zone) pair, creating it on first
// evaluation. Returns nil when the pet stopped being tracked or the zone was
// deleted in the meantime.
func (t *TrackerService) pair(petID, zoneID string) *pairState {
	key := pairKey{petID, zoneID}

	t.mu.RLock()
	ps := t.pairs[key]
	t.mu.RUnlock()
	if ps != nil {
		return ps
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tracked[petID]; !ok {
		return nil
	}
	if _, ok := t.zones[zoneID]; !ok {
		return nil
	}
	if ps = t.pairs[key]; ps == nil {
		ps = &pairState{state: domain.MembershipState{
			PetID:  petID,
			ZoneID: zoneID,
			Status: domain.MembershipUnknown,
		}}
		t.pairs[key] = ps
	}
	return ps
}
