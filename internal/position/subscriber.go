// Package position bridges the host location service to the engine. The
// engine never polls: positions arrive as push events on an MQTT topic
// at whatever cadence the host chooses.
package position

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/spotterlabs/beacon/internal/models"
)

// Handler receives validated position events.
type Handler interface {
	HandlePosition(ctx context.Context, pos models.UserPosition)
}

// positionMessage is the wire format of one position event.
type positionMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Subscriber decodes position events from an MQTT topic and feeds them
// to the handler. Malformed or out-of-range events are logged and dropped.
type Subscriber struct {
	client  mqtt.Client
	topic   string
	handler Handler
	log     *slog.Logger
}

// NewSubscriber creates a subscriber for the given topic.
func NewSubscriber(client mqtt.Client, topic string, handler Handler, log *slog.Logger) *Subscriber {
	return &Subscriber{client: client, topic: topic, handler: handler, log: log}
}

// Start subscribes to the position topic.
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

// Stop unsubscribes from the position topic. In-flight handling is
// allowed to complete; no further events are delivered.
func (s *Subscriber) Stop() error {
	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx := context.Background()

	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.log.WarnContext(ctx, "Invalid position message", "error", err)
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		s.log.WarnContext(ctx, "Rejected position message", "error", err)
		return
	}

	s.handler.HandlePosition(ctx, models.UserPosition{
		Coordinate: models.Coordinates{Latitude: raw.Latitude, Longitude: raw.Longitude},
		Timestamp:  time.Unix(raw.Timestamp, 0),
	})
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
