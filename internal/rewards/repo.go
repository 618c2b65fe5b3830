package rewards

import (
	"context"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists award history.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a rewards repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindBySource returns the award already issued for the source, if any.
func (r *Repository) FindBySource(ctx context.Context, userID uuid.UUID, origin enums.RewardOrigin, sourceRef string) (*models.FruitAward, error) {
	var award models.FruitAward
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND origin = ? AND source_ref = ?", userID, origin, sourceRef).
		First(&award).Error; err != nil {
		return nil, err
	}
	return &award, nil
}

// Create inserts an award row.
func (r *Repository) Create(ctx context.Context, award *models.FruitAward) error {
	return r.db.WithContext(ctx).Create(award).Error
}

// ListByUser returns up to limit awards older than cursor, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.FruitAward, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		q = q.Where("((awarded_at < ?) OR (awarded_at = ? AND id < ?))", cursor.At, cursor.At, cursor.ID)
	}
	var rows []models.FruitAward
	if err := q.Order("awarded_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
