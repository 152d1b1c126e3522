package config

import (
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HealthChecker probes the three external dependencies of the engine: the
// history store, the alert transport and the ingestion broker.
type HealthChecker struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	probes := map[string]error{
		"postgres": h.db.PingContext(c.Request.Context()),
		"rabbitmq": nil,
		"mqtt":     nil,
	}
	if h.amqpConn.IsClosed() {
		probes["rabbitmq"] = errConnClosed
	}
	if !h.mqtt.IsConnected() {
		probes["mqtt"] = errNotConnected
	}

	status := http.StatusOK
	deps := gin.H{}
	for name, err := range probes {
		if err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = gin.H{"status": "up"}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}

type healthErr string

func (e healthErr) Error() string { return string(e) }

const (
	errConnClosed   = healthErr("connection closed")
	errNotConnected = healthErr("not connected")
)
