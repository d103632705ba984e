package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/geofence"
	handler "github.com/nandanugg/safetrip/module/core/internal/handler/http"
	"github.com/nandanugg/safetrip/module/core/internal/positioning"
	"github.com/nandanugg/safetrip/module/core/internal/repository/bus"
	"github.com/nandanugg/safetrip/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
	"github.com/nandanugg/safetrip/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/safetrip/module/core/service"
)

const (
	PositionMQTT      = "mqtt"
	PositionSimulator = "simulator"

	BusChannel = "safety:events"

	EventsExchange = rabbitmq.ExchangeName
	EventsQueue    = rabbitmq.QueueName

	simulatorSteps = 20
)

// Dependencies are the connections the module runs on. Redis, DB, AMQP
// and MQTT are optional; a nil value selects the in-process fallback or
// disables the feature that needs it.
type Dependencies struct {
	Logger      *zap.Logger
	Redis       *redis.Client
	RedisPrefix string
	DB          *sql.DB
	AutoMigrate bool
	AMQP        *amqp.Connection
	MQTT        mqtt.Client

	PositionSource    string
	DeviceID          string
	SimulatorInterval time.Duration
}

type Module struct {
	Catalog   *geofence.Catalog
	SleepMode *service.SleepMode
	Tracker   *service.Tracker
	Contacts  *service.Contacts
	SOS       *service.SOS

	logger    *zap.Logger
	mqttSrc   *positioning.MQTTSource
	publisher *rabbitmq.EventPublisher
	handlers  []interface{ Register(r *gin.RouterGroup) }
}

func Build(ctx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store kv.Store = kv.NewMemory()
		b     bus.Bus  = bus.NewLocal()
	)
	if deps.Redis != nil {
		store = kv.NewRedis(deps.Redis, deps.RedisPrefix)
		b = bus.NewRedis(deps.Redis, BusChannel, logger)
	}

	catalog := geofence.DefaultCatalog()
	m := &Module{Catalog: catalog, logger: logger}

	source, err := m.buildSource(deps, catalog)
	if err != nil {
		return nil, err
	}

	params := service.TrackerParams{
		DeviceID:  deps.DeviceID,
		Source:    source,
		Checker:   geofence.NewChecker(catalog),
		SleepMode: service.NewSleepMode(ctx, store, b, logger),
		History:   service.NewHistory(ctx, store, logger, service.HistoryLimit),
		Alerts:    service.NewAlertManager(),
		Logger:    logger,
	}
	m.SleepMode = params.SleepMode

	var archive *postgres.ArchiveRepo
	if deps.DB != nil {
		archive = postgres.NewArchiveRepo(deps.DB)
		if deps.AutoMigrate {
			if err := archive.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate archive: %w", err)
			}
		}
		params.Archive = archive
	}

	if deps.AMQP != nil {
		m.publisher, err = rabbitmq.NewEventPublisher(deps.AMQP)
		if err != nil {
			return nil, fmt.Errorf("event publisher: %w", err)
		}
		params.Publisher = m.publisher
	}

	m.Tracker = service.NewTracker(params)
	m.Contacts = service.NewContacts(store, b, logger)

	sosParams := service.SOSParams{
		DeviceID:  deps.DeviceID,
		SleepMode: m.SleepMode,
		Contacts:  m.Contacts,
		Locations: m.Tracker,
		Logger:    logger,
	}
	if m.publisher != nil {
		sosParams.Publisher = m.publisher
	}
	m.SOS = service.NewSOS(sosParams)

	m.handlers = append(m.handlers,
		handler.NewTrackingHandler(m.Tracker, catalog, m.SleepMode),
		handler.NewContactHandler(m.Contacts),
		handler.NewSOSHandler(m.SOS),
	)
	if archive != nil {
		m.handlers = append(m.handlers, handler.NewArchiveHandler(archive, deps.DeviceID))
	}

	return m, nil
}

func (m *Module) buildSource(deps Dependencies, catalog *geofence.Catalog) (positioning.Source, error) {
	switch deps.PositionSource {
	case PositionMQTT:
		if deps.MQTT == nil {
			return nil, fmt.Errorf("position source %q needs an mqtt broker", deps.PositionSource)
		}
		m.mqttSrc = positioning.NewMQTTSource(deps.MQTT, deps.DeviceID, m.logger)
		return m.mqttSrc, nil
	case PositionSimulator, "":
		return positioning.NewSimulator(SimulatorRoute(catalog), deps.SimulatorInterval), nil
	default:
		return nil, fmt.Errorf("unknown position source %q", deps.PositionSource)
	}
}

// SimulatorRoute walks through the centroid of every zone in catalog order.
func SimulatorRoute(catalog *geofence.Catalog) []domain.LatLng {
	zones := catalog.Zones()
	waypoints := make([]domain.LatLng, 0, len(zones))
	for _, z := range zones {
		waypoints = append(waypoints, geofence.Centroid(z.Polygon))
	}
	return positioning.Walk(waypoints, simulatorSteps)
}

// PositionTopic is where a device publishes its fixes.
func PositionTopic(deviceID string) string {
	return positioning.PositionTopic(deviceID)
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	for _, h := range m.handlers {
		h.Register(r)
	}
}

func (m *Module) StartSubscribers() error {
	if m.mqttSrc == nil {
		return nil
	}
	return m.mqttSrc.Start()
}

func (m *Module) Close() {
	m.Tracker.Close()
	if m.mqttSrc != nil {
		if err := m.mqttSrc.Stop(); err != nil {
			m.logger.Warn("mqtt unsubscribe", zap.Error(err))
		}
	}
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Warn("close publisher", zap.Error(err))
		}
	}
}
