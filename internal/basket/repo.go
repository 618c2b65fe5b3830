package basket

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository covers the counter store (baskets) and the placement ledger
// (placed_fruits).
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a basket repo bound to the provided GORM DB.
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

// LockBasket takes the row lock on the account's basket, inserting an
// all-zero basket first when none exists. Must run inside a transaction.
func (r *Repository) LockBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	b, err := r.lockedBasket(ctx, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Basket{UserID: userID}).Error; err != nil {
		return nil, err
	}
	return r.lockedBasket(ctx, userID)
}

func (r *Repository) lockedBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var b models.Basket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindBasket reads the basket under a share lock so counters stay stable for
// the rest of the transaction.
func (r *Repository) FindBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var b models.Basket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("user_id = ?", userID).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// MovePlaced moves one unit of color from available to placed. It reports
// false when no unit was available.
func (r *Repository) MovePlaced(ctx context.Context, userID uuid.UUID, color enums.FruitColor) (bool, error) {
	avail, placed := models.AvailableColumn(color), models.PlacedColumn(color)
	res := r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("user_id = ? AND "+avail+" >= ?", userID, 1).
		Updates(map[string]any{
			avail:  gorm.Expr(avail+" - ?", 1),
			placed: gorm.Expr(placed+" + ?", 1),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MoveAvailable moves one unit of color from placed back to available. It
// reports false when placed was already zero.
func (r *Repository) MoveAvailable(ctx context.Context, userID uuid.UUID, color enums.FruitColor) (bool, error) {
	avail, placed := models.AvailableColumn(color), models.PlacedColumn(color)
	res := r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("user_id = ? AND "+placed+" >= ?", userID, 1).
		Updates(map[string]any{
			avail:  gorm.Expr(avail+" + ?", 1),
			placed: gorm.Expr(placed+" - ?", 1),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AddAvailable credits one unit of color.
func (r *Repository) AddAvailable(ctx context.Context, userID uuid.UUID, color enums.FruitColor) (bool, error) {
	avail := models.AvailableColumn(color)
	res := r.db.WithContext(ctx).
		Model(&models.Basket{}).
		Where("user_id = ?", userID).
		Update(avail, gorm.Expr(avail+" + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreatePlacement inserts a ledger row.
func (r *Repository) CreatePlacement(ctx context.Context, p *models.PlacedFruit) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindPlacement loads a ledger row owned by userID.
func (r *Repository) FindPlacement(ctx context.Context, userID, id uuid.UUID) (*models.PlacedFruit, error) {
	var p models.PlacedFruit
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlacement removes a ledger row owned by userID.
func (r *Repository) DeletePlacement(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.PlacedFruit{})
	return res.RowsAffected, res.Error
}

// ListPlacements returns the account's ledger rows, oldest first.
func (r *Repository) ListPlacements(ctx context.Context, userID uuid.UUID) ([]models.PlacedFruit, error) {
	var rows []models.PlacedFruit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LedgerCounts returns the number of ledger rows per color for an account.
func (r *Repository) LedgerCounts(ctx context.Context, userID uuid.UUID) (map[enums.FruitColor]int, error) {
	var rows []struct {
		Color enums.FruitColor
		Total int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PlacedFruit{}).
		Select("color, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("color").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.FruitColor]int, len(rows))
	for _, row := range rows {
		counts[row.Color] = row.Total
	}
	return counts, nil
}

// ListBasketsAfter pages through baskets ordered by user id.
func (r *Repository) ListBasketsAfter(ctx context.Context, after uuid.UUID, limit int) ([]models.Basket, error) {
	var rows []models.Basket
	q := r.db.WithContext(ctx).Order("user_id ASC").Limit(limit)
	if after != uuid.Nil {
		q = q.Where("user_id > ?", after)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
