package config

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func NewMQTT(cfg *Config) (mqtt.Client, error) {
	return NewMQTTWithClientID(cfg, cfg.MQTTClientID)
}

// NewMQTTWithClientID lets tools share the broker config without
// colliding with the server's client id. The session is persistent so
// the broker keeps subscriptions across automatic reconnects.
func NewMQTTWithClientID(cfg *Config, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetCleanSession(false).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}
