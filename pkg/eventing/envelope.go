package eventing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// CurrentVersion is the envelope version this service understands.
const CurrentVersion = 1

// Envelope is the stable wrapper around every external domain event.
type Envelope struct {
	Version    int                   `json:"version"`
	EventID    uuid.UUID             `json:"eventId"`
	EventType  enums.RewardEventType `json:"eventType"`
	OccurredAt time.Time             `json:"occurredAt"`
	Data       json.RawMessage       `json:"data"`
}

// ParseEnvelope decodes and validates a raw message body.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version <= 0 {
		env.Version = CurrentVersion
	}
	if env.EventID == uuid.Nil {
		return Envelope{}, fmt.Errorf("envelope missing eventId")
	}
	if !env.EventType.IsValid() {
		return Envelope{}, fmt.Errorf("unsupported event type %q", env.EventType)
	}
	if len(env.Data) == 0 {
		return Envelope{}, fmt.Errorf("envelope %s missing data", env.EventID)
	}
	return env, nil
}
