package enums

import "fmt"

// RewardOrigin records what caused a fruit to be issued.
type RewardOrigin string

const (
	RewardOriginManual     RewardOrigin = "manual"
	RewardOriginInvitation RewardOrigin = "invitation"
	RewardOriginChallenge  RewardOrigin = "challenge"
	RewardOriginAttendance RewardOrigin = "attendance"
)

var validRewardOrigins = []RewardOrigin{
	RewardOriginManual,
	RewardOriginInvitation,
	RewardOriginChallenge,
	RewardOriginAttendance,
}

// String implements fmt.Stringer.
func (o RewardOrigin) String() string {
	return string(o)
}

// IsValid reports whether the value is a known RewardOrigin.
func (o RewardOrigin) IsValid() bool {
	for _, candidate := range validRewardOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseRewardOrigin converts raw input into a RewardOrigin.
func ParseRewardOrigin(value string) (RewardOrigin, error) {
	for _, candidate := range validRewardOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reward origin %q", value)
}
