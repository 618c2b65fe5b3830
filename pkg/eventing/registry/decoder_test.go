package registry

import (
	"encoding/json"
	"testing"

	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/eventing"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventChallengeApproved, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	output, err := reg.Decode(enums.EventChallengeApproved, 1, json.RawMessage(`{"color":"gold"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["color"] != "gold" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventChallengeApproved, 2, nil); err == nil {
		t.Fatal("expected missing version to fail")
	}
}

func TestDefaultRegistryDecodesTypedPayloads(t *testing.T) {
	reg := Default()
	payload := json.RawMessage(`{"attendance_id":"att-9","user_id":"7d4f8a4e-7c1b-4b59-9a39-3a0f77f1d8a2","color":"green"}`)

	out, err := reg.Decode(enums.EventAttendanceRecorded, 1, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	evt, ok := out.(eventing.AttendanceRecordedEvent)
	if !ok {
		t.Fatalf("unexpected type %T", out)
	}
	if evt.AttendanceID != "att-9" || evt.Color != enums.FruitColorGreen {
		t.Fatalf("unexpected payload %+v", evt)
	}

	if _, err := reg.Decode(enums.EventAccountCreated, 1, json.RawMessage(`{"user_id":`)); err == nil {
		t.Fatal("expected malformed json to fail")
	}
}
