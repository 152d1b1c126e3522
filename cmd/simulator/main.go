package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Replays a scripted walk across a safe zone boundary so the engine can be
// exercised without GPS hardware: start at the zone center, drift out to twice
// the radius, dwell there, then walk back in. Loops forever.

type locationMessage struct {
	PetID     string  `json:"pet_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Simulated bool    `json:"simulated"`
}

const metersPerDegreeLat = 111320.0

func fenceCrossingPath(centerLat, centerLon, radiusM float64) []struct{ lat, lon float64 } {
	var path []struct{ lat, lon float64 }
	// 10 steps out to 2x radius, 3 dwell points, 10 steps back
	for i := 0; i <= 10; i++ {
		offset := 2 * radiusM * float64(i) / 10 / metersPerDegreeLat
		path = append(path, struct{ lat, lon float64 }{centerLat + offset, centerLon})
	}
	far := 2 * radiusM / metersPerDegreeLat
	for i := 0; i < 3; i++ {
		path = append(path, struct{ lat, lon float64 }{centerLat + far, centerLon})
	}
	for i := 10; i >= 0; i-- {
		offset := 2 * radiusM * float64(i) / 10 / metersPerDegreeLat
		path = append(path, struct{ lat, lon float64 }{centerLat + offset, centerLon})
	}
	return path
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	petID := "rex"
	if v := os.Getenv("PET_ID"); v != "" {
		petID = v
	}
	centerLat := envFloat("ZONE_LAT", 40.0)
	centerLon := envFloat("ZONE_LON", -3.0)
	radiusM := envFloat("ZONE_RADIUS_M", 100)

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("petfence-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	path := fenceCrossingPath(centerLat, centerLon, radiusM)
	topic := fmt.Sprintf("pets/%s/location", petID)

	log.Printf("connected to %s, replaying %d waypoints every %ds...", broker, len(path), intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	step := 0
	for range ticker.C {
		wp := path[step%len(path)]
		step++

		msg := locationMessage{
			PetID:     petID,
			Latitude:  wp.lat,
			Longitude: wp.lon,
			AccuracyM: 10,
			Timestamp: time.Now().Unix(),
			Simulated: true,
		}

		payload, _ := json.Marshal(msg)
		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
