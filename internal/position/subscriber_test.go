package position

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/spotterlabs/beacon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	positions []models.UserPosition
}

func (h *recordingHandler) HandlePosition(_ context.Context, pos models.UserPosition) {
	h.positions = append(h.positions, pos)
}

type fakeMQTTMessage struct {
	payload []byte
}

func (f *fakeMQTTMessage) Duplicate() bool   { return false }
func (f *fakeMQTTMessage) Qos() byte         { return 1 }
func (f *fakeMQTTMessage) Retained() bool    { return false }
func (f *fakeMQTTMessage) Topic() string     { return "/beacon/position" }
func (f *fakeMQTTMessage) MessageID() uint16 { return 0 }
func (f *fakeMQTTMessage) Payload() []byte   { return f.payload }
func (f *fakeMQTTMessage) Ack()              {}

func TestHandleMessage_Success(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	sub := &Subscriber{handler: handler, log: slog.Default()}

	payload, err := json.Marshal(positionMessage{
		Latitude:  50.4501,
		Longitude: 30.5234,
		Timestamp: 1737200000,
	})
	require.NoError(t, err)

	sub.handleMessage(nil, &fakeMQTTMessage{payload: payload})

	require.Len(t, handler.positions, 1)
	pos := handler.positions[0]
	assert.InEpsilon(t, 50.4501, pos.Coordinate.Latitude, 1e-9)
	assert.InEpsilon(t, 30.5234, pos.Coordinate.Longitude, 1e-9)
	assert.True(t, pos.Timestamp.Equal(time.Unix(1737200000, 0)))
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	t.Parallel()

	handler := &recordingHandler{}
	sub := &Subscriber{handler: handler, log: slog.Default()}

	sub.handleMessage(nil, &fakeMQTTMessage{payload: []byte(`{broken`)})

	assert.Empty(t, handler.positions)
}

func TestHandleMessage_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  positionMessage
	}{
		{"latitude too low", positionMessage{Latitude: -91, Longitude: 0, Timestamp: 1}},
		{"latitude too high", positionMessage{Latitude: 91, Longitude: 0, Timestamp: 1}},
		{"longitude too low", positionMessage{Latitude: 0, Longitude: -181, Timestamp: 1}},
		{"longitude too high", positionMessage{Latitude: 0, Longitude: 181, Timestamp: 1}},
		{"missing timestamp", positionMessage{Latitude: 50.45, Longitude: 30.52}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := &recordingHandler{}
			sub := &Subscriber{handler: handler, log: slog.Default()}

			payload, err := json.Marshal(tt.msg)
			require.NoError(t, err)

			sub.handleMessage(nil, &fakeMQTTMessage{payload: payload})

			assert.Empty(t, handler.positions)
		})
	}
}
