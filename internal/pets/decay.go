package pets

import (
	"time"

	"github.com/iump/fruittree-backend/pkg/config"
)

const (
	minMeter = 0
	maxMeter = 100
)

// DecayRules is how fast meters drain: Rate points per elapsed Period.
type DecayRules struct {
	Period     time.Duration
	HungerRate int
	ThirstRate int
}

// DefaultDecayRules drains one hunger and two thirst every ten minutes.
func DefaultDecayRules() DecayRules {
	return DecayRules{Period: 10 * time.Minute, HungerRate: 1, ThirstRate: 2}
}

// RulesFromConfig maps the pet config section onto DecayRules.
func RulesFromConfig(cfg config.PetConfig) DecayRules {
	return DecayRules{
		Period:     cfg.DecayPeriod,
		HungerRate: cfg.HungerRate,
		ThirstRate: cfg.ThirstRate,
	}
}

// State is the decaying part of a pet.
type State struct {
	Hunger     int
	Thirst     int
	LastUpdate time.Time
}

// ApplyDecay drains the meters by the number of whole periods between
// LastUpdate and now. With less than one period elapsed, or now before
// LastUpdate, the state comes back unchanged and changed is false.
func ApplyDecay(s State, now time.Time, rules DecayRules) (State, bool) {
	if rules.Period <= 0 || !now.After(s.LastUpdate) {
		return s, false
	}
	periods := int64(now.Sub(s.LastUpdate) / rules.Period)
	if periods < 1 {
		return s, false
	}
	return State{
		Hunger:     drain(s.Hunger, periods, rules.HungerRate),
		Thirst:     drain(s.Thirst, periods, rules.ThirstRate),
		LastUpdate: now,
	}, true
}

func drain(value int, periods int64, rate int) int {
	if rate <= 0 {
		return clamp(value)
	}
	// a full meter empties within maxMeter periods at any positive rate
	if periods > maxMeter {
		periods = maxMeter
	}
	return clamp(value - int(periods)*rate)
}

func clamp(v int) int {
	if v < minMeter {
		return minMeter
	}
	if v > maxMeter {
		return maxMeter
	}
	return v
}
