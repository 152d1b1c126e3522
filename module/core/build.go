package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	handler "github.com/petfence/petfence/module/core/internal/handler/http"
	"github.com/petfence/petfence/module/core/internal/handler/subscriber"
	"github.com/petfence/petfence/module/core/internal/repository/database"
	"github.com/petfence/petfence/module/core/internal/repository/database/postgres"
	"github.com/petfence/petfence/module/core/internal/repository/publisher/rabbitmq"
	"github.com/petfence/petfence/module/core/service"
)

type Options struct {
	MaxAccuracyM      float64
	DebounceThreshold int
	SchedulerInterval time.Duration
	PublishTimeout    time.Duration
}

type Module struct {
	Tracker   *service.TrackerService
	Ingest    *service.IngestService
	Scheduler *service.SchedulerService

	zoneRepo   database.ZoneRepository
	handler    *handler.PetHandler
	subscriber *subscriber.LocationSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options, log *logrus.Logger) (*Module, error) {
	historyRepo := postgres.NewHistoryRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)

	alertPub, err := rabbitmq.NewAlertPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}

	cache := service.NewSampleCache()
	dispatchSvc := service.NewDispatchService(alertPub, historyRepo, opts.PublishTimeout, log)
	trackerSvc := service.NewTrackerService(cache, dispatchSvc, zoneRepo, opts.DebounceThreshold, log)
	ingestSvc := service.NewIngestService(trackerSvc, cache, historyRepo, opts.MaxAccuracyM, log)
	schedulerSvc := service.NewSchedulerService(trackerSvc, cache, opts.SchedulerInterval, log)
	historySvc := service.NewHistoryService(historyRepo)

	h := handler.NewPetHandler(trackerSvc, ingestSvc, historySvc, schedulerSvc)
	sub := subscriber.NewLocationSubscriber(mqttClient, ingestSvc, log)

	return &Module{
		Tracker:    trackerSvc,
		Ingest:     ingestSvc,
		Scheduler:  schedulerSvc,
		zoneRepo:   zoneRepo,
		handler:    h,
		subscriber: sub,
	}, nil
}

// LoadZones restores the persisted zone directory into the tracker.
func (m *Module) LoadZones(ctx context.Context) error {
	zones, err := m.zoneRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list zones: %w", err)
	}
	for _, z := range zones {
		if err := m.Tracker.UpsertZone(ctx, z); err != nil {
			return fmt.Errorf("restore zone %s: %w", z.ID, err)
		}
	}
	return nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

func (m *Module) StartScheduler(ctx context.Context) {
	go m.Scheduler.Run(ctx)
}
