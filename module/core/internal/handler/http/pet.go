package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/petfence/petfence/module/core/domain"
)

type trackerService interface {
	StartTracking(petID string)
	StopTracking(petID string)
	UpsertZone(ctx context.Context, zone domain.SafeZone) error
	DeleteZone(ctx context.Context, zoneID string) error
	Membership(petID, zoneID string) (domain.MembershipState, error)
}

type ingestService interface {
	Submit(ctx context.Context, sample domain.LocationSample) error
}

type historyService interface {
	GetSampleHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error)
	GetEvents(ctx context.Context, petID string) ([]domain.TransitionEvent, error)
}

type schedulerService interface {
	Tick(ctx context.Context)
}

type sampleRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Simulated bool    `json:"simulated"`
}

type zoneRequest struct {
	ZoneID    string  `json:"zone_id"`
	PetID     string  `json:"pet_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusM   float64 `json:"radius_m"`
	Active    bool    `json:"active"`
}

type sampleResponse struct {
	PetID     string  `json:"pet_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Simulated bool    `json:"simulated"`
}

type PetHandler struct {
	trackerSvc   trackerService
	ingestSvc    ingestService
	historySvc   historyService
	schedulerSvc schedulerService
}

func NewPetHandler(trackerSvc trackerService, ingestSvc ingestService, historySvc historyService, schedulerSvc schedulerService) *PetHandler {
	return &PetHandler{
		trackerSvc:   trackerSvc,
		ingestSvc:    ingestSvc,
		historySvc:   historySvc,
		schedulerSvc: schedulerSvc,
	}
}

func (h *PetHandler) Register(r *gin.RouterGroup) {
	r.POST("/pets/:pet_id/tracking", h.StartTracking)
	r.DELETE("/pets/:pet_id/tracking", h.StopTracking)
	r.POST("/pets/:pet_id/location", h.SubmitSample)
	r.GET("/pets/:pet_id/zones/:zone_id/membership", h.GetMembership)
	r.GET("/pets/:pet_id/history", h.GetHistory)
	r.GET("/pets/:pet_id/events", h.GetEvents)
	r.PUT("/zones", h.UpsertZone)
	r.DELETE("/zones/:zone_id", h.DeleteZone)
	r.POST("/scheduler/tick", h.Tick)
}

func (h *PetHandler) StartTracking(c *gin.Context) {
	h.trackerSvc.StartTracking(c.Param("pet_id"))
	c.Status(http.StatusNoContent)
}

func (h *PetHandler) StopTracking(c *gin.Context) {
	h.trackerSvc.StopTracking(c.Param("pet_id"))
	c.Status(http.StatusNoContent)
}

func (h *PetHandler) SubmitSample(c *gin.Context) {
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Timestamp <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be positive"})
		return
	}

	sample := domain.LocationSample{
		PetID:      c.Param("pet_id"),
		Coordinate: domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude},
		AccuracyM:  req.AccuracyM,
		CapturedAt: time.Unix(req.Timestamp, 0),
		Simulated:  req.Simulated,
	}

	if err := h.ingestSvc.Submit(c.Request.Context(), sample); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// accuracy and staleness rejections
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *PetHandler) GetMembership(c *gin.Context) {
	state, err := h.trackerSvc.Membership(c.Param("pet_id"), c.Param("zone_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *PetHandler) UpsertZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ZoneID == "" {
		req.ZoneID = uuid.NewString()
	}

	zone := domain.SafeZone{
		ID:      req.ZoneID,
		PetID:   req.PetID,
		Center:  domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude},
		RadiusM: req.RadiusM,
		Active:  req.Active,
	}

	if err := h.trackerSvc.UpsertZone(c.Request.Context(), zone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, zone)
}

func (h *PetHandler) DeleteZone(c *gin.Context) {
	if err := h.trackerSvc.DeleteZone(c.Request.Context(), c.Param("zone_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PetHandler) GetHistory(c *gin.Context) {
	petID := c.Param("pet_id")

	start, err := strconv.ParseInt(c.Query("start"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}

	end, err := strconv.ParseInt(c.Query("end"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	query := &domain.HistoryQuery{
		PetID: petID,
		Start: time.Unix(start, 0),
		End:   time.Unix(end, 0),
	}

	samples, err := h.historySvc.GetSampleHistory(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}

	results := make([]sampleResponse, len(samples))
	for i, s := range samples {
		results[i] = toSampleResponse(&s)
	}
	c.JSON(http.StatusOK, results)
}

func (h *PetHandler) GetEvents(c *gin.Context) {
	events, err := h.historySvc.GetEvents(c.Request.Context(), c.Param("pet_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}
	if events == nil {
		events = []domain.TransitionEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (h *PetHandler) Tick(c *gin.Context) {
	h.schedulerSvc.Tick(c.Request.Context())
	c.Status(http.StatusAccepted)
}

func toSampleResponse(s *domain.LocationSample) sampleResponse {
	return sampleResponse{
		PetID:     s.PetID,
		Latitude:  s.Coordinate.Lat,
		Longitude: s.Coordinate.Lon,
		AccuracyM: s.AccuracyM,
		Timestamp: s.CapturedAt.Unix(),
		Simulated: s.Simulated,
	}
}
