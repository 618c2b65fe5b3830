package basket

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// Position is a point in tree space. Any finite value is accepted.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPosition builds a Position from exactly three finite coordinates.
func NewPosition(coords []float64) (Position, error) {
	if len(coords) != 3 {
		return Position{}, ErrInvalidPosition
	}
	p := Position{X: coords[0], Y: coords[1], Z: coords[2]}
	if !p.valid() {
		return Position{}, ErrInvalidPosition
	}
	return p, nil
}

func (p Position) valid() bool {
	for _, v := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PlacementRecord is one fruit on the tree.
type PlacementRecord struct {
	ID        uuid.UUID        `json:"id"`
	Color     enums.FruitColor `json:"color"`
	Position  Position         `json:"position"`
	CreatedAt time.Time        `json:"created_at"`
}

// Snapshot is the full inventory view of one account. Both maps always carry
// every color.
type Snapshot struct {
	Available  map[enums.FruitColor]int `json:"available"`
	Placed     map[enums.FruitColor]int `json:"placed"`
	Placements []PlacementRecord        `json:"placements"`
}

func placementFromModel(m models.PlacedFruit) PlacementRecord {
	return PlacementRecord{
		ID:    m.ID,
		Color: m.Color,
		Position: Position{
			X: m.PositionX,
			Y: m.PositionY,
			Z: m.PositionZ,
		},
		CreatedAt: m.CreatedAt,
	}
}

func snapshotFrom(b *models.Basket, placements []models.PlacedFruit) Snapshot {
	snap := Snapshot{
		Available:  make(map[enums.FruitColor]int, 3),
		Placed:     make(map[enums.FruitColor]int, 3),
		Placements: make([]PlacementRecord, 0, len(placements)),
	}
	for _, color := range enums.FruitColors() {
		if b != nil {
			snap.Available[color] = b.Available(color)
			snap.Placed[color] = b.Placed(color)
		} else {
			snap.Available[color] = 0
			snap.Placed[color] = 0
		}
	}
	for _, p := range placements {
		snap.Placements = append(snap.Placements, placementFromModel(p))
	}
	return snap
}
