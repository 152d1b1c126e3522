package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/petfence/petfence/module/core/domain"
	"github.com/petfence/petfence/module/core/internal/repository/database"
	"github.com/petfence/petfence/module/core/internal/repository/publisher"
)

// DispatchService converts confirmed transitions into severity-tagged alerts.
// An exit raises a high-priority alert, a re-entry a low-priority one. Delivery
// failures are logged only; the transition stays confirmed.
type DispatchService struct {
	publisher publisher.AlertPublisher
	history   database.HistoryRepository
	timeout   time.Duration
	log       *logrus.Logger
}

func NewDispatchService(pub publisher.AlertPublisher, history database.HistoryRepository, timeout time.Duration, log *logrus.Logger) *DispatchService {
	return &DispatchService{
		publisher: pub,
		history:   history,
		timeout:   timeout,
		log:       log,
	}
}

func (d *DispatchService) Dispatch(ctx context.Context, ev domain.TransitionEvent) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.history != nil {
		if err := d.history.InsertEvent(ctx, &ev); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"pet_id":  ev.PetID,
				"zone_id": ev.ZoneID,
			}).Warn("event persist failed")
		}
	}

	alert := buildAlert(ev)
	if err := d.publisher.PublishAlert(ctx, &alert); err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{
			"pet_id":   alert.PetID,
			"zone_id":  alert.ZoneID,
			"severity": alert.Severity,
		}).Error("alert delivery failed")
	}
}

func buildAlert(ev domain.TransitionEvent) domain.Alert {
	severity := domain.SeverityLow
	message := fmt.Sprintf("pet %s returned to zone %s", ev.PetID, ev.ZoneID)
	if ev.Kind == domain.TransitionExited {
		severity = domain.SeverityHigh
		message = fmt.Sprintf("pet %s left zone %s", ev.PetID, ev.ZoneID)
	}
	return domain.Alert{
		PetID:     ev.PetID,
		ZoneID:    ev.ZoneID,
		Event:     ev.Kind,
		Severity:  severity,
		Message:   message,
		Location:  ev.Sample.Coordinate,
		Timestamp: ev.OccurredAt.Unix(),
	}
}
