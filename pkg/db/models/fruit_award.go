package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// FruitAward is the history row written for every issued fruit.
type FruitAward struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:idx_fruit_awards_user_awarded,priority:1;uniqueIndex:ux_fruit_awards_source,priority:1"`
	Color     enums.FruitColor   `gorm:"column:color;type:text;not null"`
	Reason    string             `gorm:"column:reason;type:text;not null"`
	Origin    enums.RewardOrigin `gorm:"column:origin;type:text;not null;uniqueIndex:ux_fruit_awards_source,priority:2"`
	SourceRef *string            `gorm:"column:source_ref;type:text;uniqueIndex:ux_fruit_awards_source,priority:3"`
	AwardedAt time.Time          `gorm:"column:awarded_at;not null;index:idx_fruit_awards_user_awarded,priority:2"`
}
