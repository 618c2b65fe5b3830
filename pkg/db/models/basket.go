package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// Basket is the per-account counter row: available and placed fruit per color.
type Basket struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	GreenAvailable int       `gorm:"column:green_available;not null;default:0;check:chk_baskets_green_available,green_available >= 0"`
	GreenPlaced    int       `gorm:"column:green_placed;not null;default:0;check:chk_baskets_green_placed,green_placed >= 0"`
	RedAvailable   int       `gorm:"column:red_available;not null;default:0;check:chk_baskets_red_available,red_available >= 0"`
	RedPlaced      int       `gorm:"column:red_placed;not null;default:0;check:chk_baskets_red_placed,red_placed >= 0"`
	GoldAvailable  int       `gorm:"column:gold_available;not null;default:0;check:chk_baskets_gold_available,gold_available >= 0"`
	GoldPlaced     int       `gorm:"column:gold_placed;not null;default:0;check:chk_baskets_gold_placed,gold_placed >= 0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Available returns the unplaced count for color; unknown colors count zero.
func (b Basket) Available(color enums.FruitColor) int {
	switch color {
	case enums.FruitColorGreen:
		return b.GreenAvailable
	case enums.FruitColorRed:
		return b.RedAvailable
	case enums.FruitColorGold:
		return b.GoldAvailable
	}
	return 0
}

// Placed returns the on-tree count for color; unknown colors count zero.
func (b Basket) Placed(color enums.FruitColor) int {
	switch color {
	case enums.FruitColorGreen:
		return b.GreenPlaced
	case enums.FruitColorRed:
		return b.RedPlaced
	case enums.FruitColorGold:
		return b.GoldPlaced
	}
	return 0
}

// AvailableColumn and PlacedColumn name the counter columns for color. Only
// enum values reach SQL through these.
func AvailableColumn(color enums.FruitColor) string {
	return string(color) + "_available"
}

func PlacedColumn(color enums.FruitColor) string {
	return string(color) + "_placed"
}
