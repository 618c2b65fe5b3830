package models

import (
	"time"

	"github.com/google/uuid"
)

// PetState holds a pet's decaying meters. Revision increments on every write
// and guards compare-and-set updates.
type PetState struct {
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Hunger     int       `gorm:"column:hunger;not null;default:100;check:chk_pet_states_hunger,hunger BETWEEN 0 AND 100"`
	Thirst     int       `gorm:"column:thirst;not null;default:100;check:chk_pet_states_thirst,thirst BETWEEN 0 AND 100"`
	Nickname   *string   `gorm:"column:nickname;size:50"`
	LastUpdate time.Time `gorm:"column:last_update;not null"`
	Revision   int64     `gorm:"column:revision;not null;default:0"`
}
