package pets

import (
	"context"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists pet state.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a pets repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads the pet for userID.
func (r *Repository) Find(ctx context.Context, userID uuid.UUID) (*models.PetState, error) {
	var pet models.PetState
	if err := r.db.WithContext(ctx).First(&pet, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// CreateIfAbsent inserts pet unless the account already has one.
func (r *Repository) CreateIfAbsent(ctx context.Context, pet *models.PetState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(pet).Error
}

// CompareAndSet writes next only if the stored revision still equals
// next.Revision, then bumps the revision. It reports whether the write won.
func (r *Repository) CompareAndSet(ctx context.Context, next *models.PetState) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PetState{}).
		Where("user_id = ? AND revision = ?", next.UserID, next.Revision).
		Updates(map[string]any{
			"hunger":      next.Hunger,
			"thirst":      next.Thirst,
			"nickname":    next.Nickname,
			"last_update": next.LastUpdate,
			"revision":    gorm.Expr("revision + ?", 1),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	next.Revision++
	return true, nil
}
