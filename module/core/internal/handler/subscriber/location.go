package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/petfence/petfence/module/core/domain"
)

const topicPattern = "pets/+/location"

type ingestService interface {
	Submit(ctx context.Context, sample domain.LocationSample) error
}

type locationMessage struct {
	PetID     string  `json:"pet_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Simulated bool    `json:"simulated"`
}

// LocationSubscriber feeds MQTT location messages, live or simulated, into the
// ingestor.
type LocationSubscriber struct {
	client    mqtt.Client
	ingestSvc ingestService
	log       *logrus.Logger
}

func NewLocationSubscriber(client mqtt.Client, ingestSvc ingestService, log *logrus.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client:    client,
		ingestSvc: ingestSvc,
		log:       log,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.log.WithError(err).Info("invalid location message")
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		s.log.WithError(err).Info("location message validation failed")
		return
	}

	sample := domain.LocationSample{
		PetID:      raw.PetID,
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		AccuracyM:  raw.AccuracyM,
		CapturedAt: time.Unix(raw.Timestamp, 0),
		Simulated:  raw.Simulated,
	}

	// rejection details already logged by the ingestor
	_ = s.ingestSvc.Submit(context.Background(), sample)
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.PetID == "" {
		return fmt.Errorf("pet_id: required")
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.AccuracyM < 0 {
		return fmt.Errorf("accuracy_m: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
