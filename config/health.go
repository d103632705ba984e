package config

import (
	"database/sql"
	"errors"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

var errNotConnected = errors.New("not connected")

// HealthChecker reports on every configured dependency. Nil dependencies
// are disabled and left out of the report.
type HealthChecker struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
	redis    *redis.Client
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient, redis: redisClient}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	report := func(name string, err error) {
		if err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
			return
		}
		deps[name] = gin.H{"status": "up"}
	}

	if h.db != nil {
		report("postgres", h.db.PingContext(ctx))
	}

	if h.amqpConn != nil {
		var err error
		if h.amqpConn.IsClosed() {
			err = amqp.ErrClosed
		}
		report("rabbitmq", err)
	}

	if h.mqtt != nil {
		var err error
		if !h.mqtt.IsConnected() {
			err = errNotConnected
		}
		report("mqtt", err)
	}

	if h.redis != nil {
		report("redis", h.redis.Ping(ctx).Err())
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
