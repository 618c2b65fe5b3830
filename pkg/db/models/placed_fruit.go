package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// PlacedFruit is one fruit hung on the shared tree at a 3-D position.
type PlacedFruit struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:idx_placed_fruits_user_color,priority:1"`
	Color     enums.FruitColor `gorm:"column:color;type:text;not null;index:idx_placed_fruits_user_color,priority:2"`
	PositionX float64          `gorm:"column:position_x;not null"`
	PositionY float64          `gorm:"column:position_y;not null"`
	PositionZ float64          `gorm:"column:position_z;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
