package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/config"
	"github.com/nandanugg/safetrip/module/core"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.StoreBackend == config.StoreRedis {
		rdb, err = config.NewRedis(cfg)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = config.NewPostgres(cfg)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
	}

	var amqpConn *amqp.Connection
	if cfg.RabbitMQURL != "" {
		amqpConn, err = config.NewRabbitMQ(cfg)
		if err != nil {
			logger.Fatal("rabbitmq", zap.Error(err))
		}
		defer func() { _ = amqpConn.Close() }()
	}

	var mqttClient mqtt.Client
	if cfg.MQTTBroker != "" {
		mqttClient, err = config.NewMQTT(cfg)
		if err != nil {
			logger.Fatal("mqtt", zap.Error(err))
		}
		defer mqttClient.Disconnect(250)
	}

	coreModule, err := core.Build(ctx, core.Dependencies{
		Logger:            logger,
		Redis:             rdb,
		RedisPrefix:       cfg.RedisPrefix,
		DB:                db,
		AutoMigrate:       cfg.AutoMigrate,
		AMQP:              amqpConn,
		MQTT:              mqttClient,
		PositionSource:    cfg.PositionSource,
		DeviceID:          cfg.DeviceID,
		SimulatorInterval: cfg.SimulatorInterval,
	})
	if err != nil {
		logger.Fatal("core module", zap.Error(err))
	}
	defer coreModule.Close()

	if err := coreModule.StartSubscribers(); err != nil {
		logger.Fatal("start subscribers", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	health := config.NewHealthChecker(db, amqpConn, mqttClient, rdb)
	health.Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	coreModule.RegisterRoutes(r.Group("/api/v1"))

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: r}
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
