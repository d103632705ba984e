package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/nandanugg/safetrip/config"
	"github.com/nandanugg/safetrip/module/core"
	"github.com/nandanugg/safetrip/module/core/geofence"
)

type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// jitter is roughly five meters of noise in degrees.
const jitter = 0.00005

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

	cfg := config.Load()
	if cfg.MQTTBroker == "" {
		cfg.MQTTBroker = "tcp://localhost:1883"
	}

	client, err := config.NewMQTTWithClientID(cfg, cfg.MQTTClientID+"-simulator")
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer client.Disconnect(250)

	route := core.SimulatorRoute(geofence.DefaultCatalog())
	topic := core.PositionTopic(cfg.DeviceID)

	log.Printf("connected to %s, walking %d points every %ds on %s", cfg.MQTTBroker, len(route), intervalSec, topic)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(route) {
		<-ticker.C
		p := route[i]

		msg := positionMessage{
			DeviceID:  cfg.DeviceID,
			Latitude:  p.Lat + (rand.Float64()-0.5)*jitter,
			Longitude: p.Lon + (rand.Float64()-0.5)*jitter,
			Accuracy:  5 + rand.Float64()*10,
			Timestamp: time.Now().UnixMilli(),
		}

		payload, _ := json.Marshal(msg)
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("publish: %v", err)
			continue
		}

		log.Printf("published to %s: %s", topic, payload)
	}
}
