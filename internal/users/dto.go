package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
)

// AccountDTO is the transport shape of a provisioned account.
type AccountDTO struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProvisionResult reports whether Provision created the account or found it.
type ProvisionResult struct {
	Account AccountDTO `json:"account"`
	Created bool       `json:"created"`
}

func FromModel(u *models.User) AccountDTO {
	if u == nil {
		return AccountDTO{}
	}
	return AccountDTO{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
