package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petfence/petfence/module/core/domain"
)

type mockTrackerService struct {
	started    []string
	stopped    []string
	upsertFn   func(ctx context.Context, zone domain.SafeZone) error
	deleteFn   func(ctx context.Context, zoneID string) error
	membership func(petID, zoneID string) (domain.MembershipState, error)
}

func (m *mockTrackerService) StartTracking(petID string) { m.started = append(m.started, petID) }
func (m *mockTrackerService) StopTracking(petID string)  { m.stopped = append(m.stopped, petID) }

func (m *mockTrackerService) UpsertZone(ctx context.Context, zone domain.SafeZone) error {
	return m.upsertFn(ctx, zone)
}

func (m *mockTrackerService) DeleteZone(ctx context.Context, zoneID string) error {
	return m.deleteFn(ctx, zoneID)
}

func (m *mockTrackerService) Membership(petID, zoneID string) (domain.MembershipState, error) {
	return m.membership(petID, zoneID)
}

type mockIngestService struct {
	submitFn func(ctx context.Context, sample domain.LocationSample) error
}

func (m *mockIngestService) Submit(ctx context.Context, sample domain.LocationSample) error {
	return m.submitFn(ctx, sample)
}

type mockHistoryService struct {
	getHistoryFn func(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error)
	getEventsFn  func(ctx context.Context, petID string) ([]domain.TransitionEvent, error)
}

func (m *mockHistoryService) GetSampleHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockHistoryService) GetEvents(ctx context.Context, petID string) ([]domain.TransitionEvent, error) {
	return m.getEventsFn(ctx, petID)
}

type mockSchedulerService struct {
	ticks int
}

func (m *mockSchedulerService) Tick(_ context.Context) { m.ticks++ }

func setupRouter(tracker trackerService, ingest ingestService, history historyService, scheduler schedulerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPetHandler(tracker, ingest, history, scheduler)
	h.Register(r.Group(""))
	return r
}

func TestStartStopTracking(t *testing.T) {
	tracker := &mockTrackerService{}
	r := setupRouter(tracker, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/pets/rex/tracking", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/pets/rex/tracking", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	if len(tracker.started) != 1 || tracker.started[0] != "rex" {
		t.Errorf("expected start for rex, got %v", tracker.started)
	}
	if len(tracker.stopped) != 1 || tracker.stopped[0] != "rex" {
		t.Errorf("expected stop for rex, got %v", tracker.stopped)
	}
}

func TestSubmitSample_Success(t *testing.T) {
	var submitted domain.LocationSample
	ingest := &mockIngestService{
		submitFn: func(_ context.Context, sample domain.LocationSample) error {
			submitted = sample
			return nil
		},
	}
	r := setupRouter(&mockTrackerService{}, ingest, nil, nil)

	body, _ := json.Marshal(sampleRequest{
		Latitude:  40.0,
		Longitude: -3.0,
		AccuracyM: 12,
		Timestamp: 1715003456,
		Simulated: true,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/pets/rex/location", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if submitted.PetID != "rex" {
		t.Errorf("expected rex, got %s", submitted.PetID)
	}
	if !submitted.Simulated {
		t.Error("expected simulated flag to survive")
	}
	if !submitted.CapturedAt.Equal(time.Unix(1715003456, 0)) {
		t.Errorf("unexpected captured at: %v", submitted.CapturedAt)
	}
}

func TestSubmitSample_InvalidBody(t *testing.T) {
	r := setupRouter(&mockTrackerService{}, &mockIngestService{}, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/pets/rex/location", bytes.NewReader([]byte("not json")))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmitSample_Rejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid coordinate", domain.ErrInvalidCoordinate, http.StatusBadRequest},
		{"low accuracy", domain.ErrLowAccuracy, http.StatusUnprocessableEntity},
		{"stale", domain.ErrStaleSample, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := &mockIngestService{
				submitFn: func(_ context.Context, _ domain.LocationSample) error {
					return tt.err
				},
			}
			r := setupRouter(&mockTrackerService{}, ingest, nil, nil)

			body, _ := json.Marshal(sampleRequest{Latitude: 40.0, Longitude: -3.0, Timestamp: 1715003456})
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/pets/rex/location", bytes.NewReader(body))
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGetMembership_Success(t *testing.T) {
	tracker := &mockTrackerService{
		membership: func(petID, zoneID string) (domain.MembershipState, error) {
			return domain.MembershipState{
				PetID:  petID,
				ZoneID: zoneID,
				Status: domain.MembershipInside,
			}, nil
		},
	}
	r := setupRouter(tracker, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/pets/rex/zones/z1/membership", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp domain.MembershipState
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != domain.MembershipInside {
		t.Errorf("expected inside, got %s", resp.Status)
	}
}

func TestGetMembership_NotFound(t *testing.T) {
	tracker := &mockTrackerService{
		membership: func(_, _ string) (domain.MembershipState, error) {
			return domain.MembershipState{}, domain.ErrUnknownZone
		},
	}
	r := setupRouter(tracker, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/pets/rex/zones/nope/membership", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpsertZone_GeneratesID(t *testing.T) {
	var upserted domain.SafeZone
	tracker := &mockTrackerService{
		upsertFn: func(_ context.Context, zone domain.SafeZone) error {
			upserted = zone
			return nil
		},
	}
	r := setupRouter(tracker, nil, nil, nil)

	body, _ := json.Marshal(zoneRequest{
		PetID:     "rex",
		Latitude:  40.0,
		Longitude: -3.0,
		RadiusM:   100,
		Active:    true,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/zones", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if upserted.ID == "" {
		t.Error("expected generated zone id")
	}

	var resp domain.SafeZone
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != upserted.ID {
		t.Errorf("response id %s does not match upserted %s", resp.ID, upserted.ID)
	}
}

func TestUpsertZone_Invalid(t *testing.T) {
	tracker := &mockTrackerService{
		upsertFn: func(_ context.Context, _ domain.SafeZone) error {
			return domain.ErrInvalidZone
		},
	}
	r := setupRouter(tracker, nil, nil, nil)

	body, _ := json.Marshal(zoneRequest{PetID: "rex", RadiusM: 0})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/zones", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeleteZone(t *testing.T) {
	tracker := &mockTrackerService{
		deleteFn: func(_ context.Context, zoneID string) error {
			if zoneID == "z1" {
				return nil
			}
			return domain.ErrUnknownZone
		},
	}
	r := setupRouter(tracker, nil, nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/zones/z1", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/zones/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetHistory_Success(t *testing.T) {
	ts1 := time.Unix(1715000000, 0)
	ts2 := time.Unix(1715005000, 0)
	history := &mockHistoryService{
		getHistoryFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
			if query.PetID != "rex" {
				t.Fatalf("unexpected pet id: %s", query.PetID)
			}
			return []domain.LocationSample{
				{PetID: "rex", Coordinate: domain.Coordinate{Lat: 40.0, Lon: -3.0}, CapturedAt: ts1},
				{PetID: "rex", Coordinate: domain.Coordinate{Lat: 40.002, Lon: -3.0}, CapturedAt: ts2},
			}, nil
		},
	}
	r := setupRouter(&mockTrackerService{}, nil, history, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/pets/rex/history?start=1715000000&end=1715009999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []sampleResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
}

func TestGetHistory_InvalidParams(t *testing.T) {
	r := setupRouter(&mockTrackerService{}, nil, &mockHistoryService{}, nil)

	for _, url := range []string{
		"/pets/rex/history?start=abc&end=1715009999",
		"/pets/rex/history?start=1715000000&end=abc",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", url, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", url, w.Code)
		}
	}
}

func TestGetEvents_Success(t *testing.T) {
	history := &mockHistoryService{
		getEventsFn: func(_ context.Context, petID string) ([]domain.TransitionEvent, error) {
			return []domain.TransitionEvent{
				{PetID: petID, ZoneID: "z1", Kind: domain.TransitionExited},
			}, nil
		},
	}
	r := setupRouter(&mockTrackerService{}, nil, history, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/pets/rex/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []domain.TransitionEvent
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 event, got %d", len(resp))
	}
}

func TestGetEvents_ServiceError(t *testing.T) {
	history := &mockHistoryService{
		getEventsFn: func(_ context.Context, _ string) ([]domain.TransitionEvent, error) {
			return nil, errors.New("db error")
		},
	}
	r := setupRouter(&mockTrackerService{}, nil, history, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/pets/rex/events", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestManualTick(t *testing.T) {
	sched := &mockSchedulerService{}
	r := setupRouter(&mockTrackerService{}, nil, nil, sched)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/scheduler/tick", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if sched.ticks != 1 {
		t.Errorf("expected 1 tick, got %d", sched.ticks)
	}
}
