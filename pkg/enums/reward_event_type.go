package enums

import "fmt"

// RewardEventType names the external domain events the reward worker consumes.
type RewardEventType string

const (
	EventAccountCreated     RewardEventType = "account.created"
	EventInvitationAccepted RewardEventType = "invitation.accepted"
	EventChallengeApproved  RewardEventType = "challenge.approved"
	EventAttendanceRecorded RewardEventType = "attendance.recorded"
)

var validRewardEventTypes = []RewardEventType{
	EventAccountCreated,
	EventInvitationAccepted,
	EventChallengeApproved,
	EventAttendanceRecorded,
}

// String implements fmt.Stringer.
func (e RewardEventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known RewardEventType.
func (e RewardEventType) IsValid() bool {
	for _, candidate := range validRewardEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseRewardEventType converts raw input into a RewardEventType.
func ParseRewardEventType(value string) (RewardEventType, error) {
	for _, candidate := range validRewardEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reward event type %q", value)
}

// RewardOrigin maps an event to the origin recorded on the award. The bool is
// false for events that do not issue fruit.
func (e RewardEventType) RewardOrigin() (RewardOrigin, bool) {
	switch e {
	case EventInvitationAccepted:
		return RewardOriginInvitation, true
	case EventChallengeApproved:
		return RewardOriginChallenge, true
	case EventAttendanceRecorded:
		return RewardOriginAttendance, true
	}
	return "", false
}
