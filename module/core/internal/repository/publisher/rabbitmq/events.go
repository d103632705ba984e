package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	ExchangeName = "safety.events"
	QueueName    = "safety_alerts"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type EventPublisher struct {
	ch channel
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := Declare(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &EventPublisher{ch: ch}, nil
}

// Declare sets up the fanout exchange and the durable alert queue bound
// to it. Consumers call it too so either side may start first.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Message is the envelope on the wire. Exactly one of Alert and SOS is
// set, matching Event.
type Message struct {
	Event     domain.GeofenceEventType `json:"event"`
	DeviceID  string                   `json:"device_id"`
	Alert     *domain.GeofenceAlert    `json:"alert,omitempty"`
	SOS       *domain.SOSAlert         `json:"sos,omitempty"`
	Timestamp int64                    `json:"timestamp"`
}

func (p *EventPublisher) PublishAlert(ctx context.Context, alert *domain.GeofenceAlert) error {
	return p.publish(ctx, Message{
		Event:     domain.GeofenceEntry,
		DeviceID:  alert.DeviceID,
		Alert:     alert,
		Timestamp: alert.Timestamp,
	})
}

func (p *EventPublisher) PublishSOS(ctx context.Context, alert *domain.SOSAlert) error {
	return p.publish(ctx, Message{
		Event:     domain.SOSTriggered,
		DeviceID:  alert.DeviceID,
		SOS:       alert,
		Timestamp: alert.Timestamp,
	})
}

func (p *EventPublisher) Close() error {
	return p.ch.Close()
}

func (p *EventPublisher) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Event, err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
