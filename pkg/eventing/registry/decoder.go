package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/eventing"
)

type decoderFunc func(payload json.RawMessage) (interface{}, error)

type registryKey struct {
	eventType enums.RewardEventType
	version   int
}

// DecoderRegistry stores versioned payload decoders for consumers.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	registry map[registryKey]decoderFunc
}

// NewDecoderRegistry builds an empty decoder registry.
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{registry: make(map[registryKey]decoderFunc)}
}

// Default returns a registry preloaded with the v1 reward event payloads.
func Default() *DecoderRegistry {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventAccountCreated, 1, jsonDecoder[eventing.AccountCreatedEvent]())
	reg.Register(enums.EventInvitationAccepted, 1, jsonDecoder[eventing.InvitationAcceptedEvent]())
	reg.Register(enums.EventChallengeApproved, 1, jsonDecoder[eventing.ChallengeApprovedEvent]())
	reg.Register(enums.EventAttendanceRecorded, 1, jsonDecoder[eventing.AttendanceRecordedEvent]())
	return reg
}

// Register stores a decoder for the given event type and version.
func (r *DecoderRegistry) Register(eventType enums.RewardEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[registryKey{eventType: eventType, version: version}] = decoder
}

// Decode runs the decoder registered for the event type and version.
func (r *DecoderRegistry) Decode(eventType enums.RewardEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if decoder, ok := r.registry[registryKey{eventType: eventType, version: version}]; ok {
		return decoder(payload)
	}
	return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
}

func jsonDecoder[T any]() decoderFunc {
	return func(payload json.RawMessage) (interface{}, error) {
		var out T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
