package rewards

import (
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
)

// IssueInput describes one fruit to credit. SourceRef identifies the
// triggering event; when set, a replay of the same (account, origin,
// source) is a no-op.
type IssueInput struct {
	UserID    uuid.UUID
	Color     enums.FruitColor
	Reason    string
	Origin    enums.RewardOrigin
	SourceRef *string
}

// IssueResult reports whether a unit was credited. Issued is false when the
// source was already rewarded.
type IssueResult struct {
	Issued bool      `json:"issued"`
	Award  *AwardDTO `json:"award,omitempty"`
}

// AwardDTO is one entry in an account's reward history.
type AwardDTO struct {
	ID        uuid.UUID          `json:"id"`
	Color     enums.FruitColor   `json:"color"`
	Reason    string             `json:"reason"`
	Origin    enums.RewardOrigin `json:"origin"`
	SourceRef *string            `json:"source_ref,omitempty"`
	AwardedAt time.Time          `json:"awarded_at"`
}

// HistoryPage is a cursor page of awards, newest first.
type HistoryPage struct {
	Items      []AwardDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func fromModel(m models.FruitAward) AwardDTO {
	return AwardDTO{
		ID:        m.ID,
		Color:     m.Color,
		Reason:    m.Reason,
		Origin:    m.Origin,
		SourceRef: m.SourceRef,
		AwardedAt: m.AwardedAt,
	}
}
