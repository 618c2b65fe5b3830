package pets

import (
	"time"

	"github.com/iump/fruittree-backend/pkg/db/models"
)

// PetStateDTO is the transport shape of a pet.
type PetStateDTO struct {
	Hunger     int       `json:"hunger"`
	Thirst     int       `json:"thirst"`
	Nickname   *string   `json:"nickname"`
	LastUpdate time.Time `json:"last_update"`
}

// UpdateInput carries the optional fields of a pet update. An empty
// Nickname clears it.
type UpdateInput struct {
	Hunger   *int
	Thirst   *int
	Nickname *string
}

func fromModel(m *models.PetState) PetStateDTO {
	return PetStateDTO{
		Hunger:     m.Hunger,
		Thirst:     m.Thirst,
		Nickname:   m.Nickname,
		LastUpdate: m.LastUpdate,
	}
}

func stateOf(m *models.PetState) State {
	return State{Hunger: m.Hunger, Thirst: m.Thirst, LastUpdate: m.LastUpdate}
}
