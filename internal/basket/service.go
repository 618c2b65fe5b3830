package basket

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 25 * time.Millisecond
	maxBackoff        = time.Second
)

// ColorCatalog reports which colors have reference data.
type ColorCatalog interface {
	Has(color enums.FruitColor) bool
}

// CreditFunc runs inside a Credit transaction after the basket lock is held
// and before the unit is added. Returning false skips the credit.
type CreditFunc func(tx *gorm.DB) (bool, error)

// ServiceParams groups dependencies for the inventory engine.
type ServiceParams struct {
	DB         db.TxRunner
	Repo       *Repository
	UserRepo   *users.Repository
	Catalog    ColorCatalog
	Logger     *logger.Logger
	Metrics    *metrics.InventoryMetrics
	MaxRetries *int
	Backoff    time.Duration
	Now        func() time.Time
}

// Service moves fruit between an account's basket and the tree. Place,
// Return and Credit for the same account are serialized.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, color enums.FruitColor, pos Position) (PlacementRecord, error)
	Return(ctx context.Context, userID, placementID uuid.UUID) (enums.FruitColor, error)
	Snapshot(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	Credit(ctx context.Context, userID uuid.UUID, color enums.FruitColor, within CreditFunc) (bool, error)
}

type service struct {
	db         db.TxRunner
	repo       *Repository
	userRepo   *users.Repository
	catalog    ColorCatalog
	logg       *logger.Logger
	metrics    *metrics.InventoryMetrics
	locks      *accountLocks
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewService builds the inventory engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fruit catalog is required")
	}
	maxRetries := defaultMaxRetries
	if params.MaxRetries != nil {
		if *params.MaxRetries < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max retries must be >= 0")
		}
		maxRetries = *params.MaxRetries
	}
	backoff := params.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:         params.DB,
		repo:       params.Repo,
		userRepo:   params.UserRepo,
		catalog:    params.Catalog,
		logg:       logg,
		metrics:    params.Metrics,
		locks:      newAccountLocks(),
		maxRetries: maxRetries,
		backoff:    backoff,
		now:        now,
	}, nil
}

// Place hangs one fruit of color at pos.
func (s *service) Place(ctx context.Context, userID uuid.UUID, color enums.FruitColor, pos Position) (PlacementRecord, error) {
	if userID == uuid.Nil {
		return PlacementRecord{}, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if err := s.checkColor(color); err != nil {
		return PlacementRecord{}, err
	}
	if !pos.valid() {
		return PlacementRecord{}, ErrInvalidPosition
	}

	var out PlacementRecord
	err := s.exclusive(ctx, metrics.OpPlace, userID, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.ensureAccount(ctx, tx, userID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)

		b, err := repo.LockBasket(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock basket")
		}
		if b.Available(color) < 1 {
			return ErrInsufficientStock
		}
		moved, err := repo.MovePlaced(ctx, userID, color)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
		}
		if !moved {
			return ErrInsufficientStock
		}

		row := &models.PlacedFruit{
			ID:        uuid.New(),
			UserID:    userID,
			Color:     color,
			PositionX: pos.X,
			PositionY: pos.Y,
			PositionZ: pos.Z,
			CreatedAt: s.now().UTC(),
		}
		if err := repo.CreatePlacement(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create placement")
		}
		out = placementFromModel(*row)
		return nil
	})
	if err != nil {
		return PlacementRecord{}, err
	}
	return out, nil
}

// Return takes a placed fruit off the tree and back into the basket. A
// placement that is missing or owned by someone else yields the same error.
func (s *service) Return(ctx context.Context, userID, placementID uuid.UUID) (enums.FruitColor, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if placementID == uuid.Nil {
		return "", ErrPlacementNotFound
	}

	var color enums.FruitColor
	err := s.exclusive(ctx, metrics.OpReturn, userID, func(ctx context.Context, tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.lockedBasket(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlacementNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock basket")
		}
		p, err := repo.FindPlacement(ctx, userID, placementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlacementNotFound
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load placement")
		}

		moved, err := repo.MoveAvailable(ctx, userID, p.Color)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
		}
		if !moved {
			s.reportDrift(ctx, userID, p.Color, placementID)
			return ErrCounterLedgerDrift
		}
		deleted, err := repo.DeletePlacement(ctx, userID, placementID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete placement")
		}
		if deleted != 1 {
			s.reportDrift(ctx, userID, p.Color, placementID)
			return ErrCounterLedgerDrift
		}
		color = p.Color
		return nil
	})
	if err != nil {
		return "", err
	}
	return color, nil
}

// Snapshot returns counters and placements read in one transaction.
func (s *service) Snapshot(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	if userID == uuid.Nil {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}

	var snap Snapshot
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureAccount(ctx, tx, userID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)

		b, err := repo.FindBasket(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
			}
			b = nil
		}
		placements, err := repo.ListPlacements(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list placements")
		}
		snap = snapshotFrom(b, placements)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Credit adds one unit of color to the account, creating the basket when
// absent. within runs first under the same lock and transaction; it can veto
// the credit or write rows that must commit together with it.
func (s *service) Credit(ctx context.Context, userID uuid.UUID, color enums.FruitColor, within CreditFunc) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if err := s.checkColor(color); err != nil {
		return false, err
	}

	var credited bool
	err := s.exclusive(ctx, metrics.OpIssue, userID, func(ctx context.Context, tx *gorm.DB) error {
		credited = false
		if err := s.ensureAccount(ctx, tx, userID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)

		if _, err := repo.LockBasket(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock basket")
		}
		if within != nil {
			proceed, err := within(tx)
			if err != nil {
				return err
			}
			if !proceed {
				return nil
			}
		}
		added, err := repo.AddAvailable(ctx, userID, color)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket")
		}
		if !added {
			return pkgerrors.New(pkgerrors.CodeInternal, "locked basket vanished")
		}
		credited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

func (s *service) checkColor(color enums.FruitColor) error {
	if !color.IsValid() || !s.catalog.Has(color) {
		return ErrUnknownFruitColor
	}
	return nil
}

func (s *service) ensureAccount(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	ok, err := s.userRepo.WithTx(tx).Exists(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !ok {
		return users.ErrAccountNotFound
	}
	return nil
}

// exclusive runs fn in a transaction while holding the account lock. Once
// the lock is held the transaction is no longer tied to ctx cancellation;
// ctx still bounds the wait for the lock and the pauses between retries.
func (s *service) exclusive(ctx context.Context, op string, userID uuid.UUID, fn func(ctx context.Context, tx *gorm.DB) error) error {
	start := time.Now()
	ctx = s.logg.WithFields(ctx, map[string]any{"account_id": userID.String(), "op": op})

	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		s.metrics.Observe(op, resultLabel(err), time.Since(start))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "waiting for basket lock")
	}
	defer release()

	err = s.withRetry(ctx, op, func() error {
		txCtx := context.WithoutCancel(ctx)
		return s.db.WithTx(txCtx, func(tx *gorm.DB) error {
			return fn(txCtx, tx)
		})
	})
	s.metrics.Observe(op, resultLabel(err), time.Since(start))
	return err
}

func (s *service) withRetry(ctx context.Context, op string, attempt func() error) error {
	delay := s.backoff
	for n := 0; ; n++ {
		err := attempt()
		if err == nil || !db.IsTransient(err) {
			return err
		}
		if n >= s.maxRetries {
			s.logg.Warn(ctx, "basket transaction retries exhausted")
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "basket is busy, retry later")
		}
		s.metrics.IncRetry(op)
		s.logg.Warn(s.logg.WithField(ctx, "attempt", n+1), "retrying basket transaction")
		if err := sleepWithContext(ctx, delay); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "basket retry interrupted")
		}
		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
}

func (s *service) reportDrift(ctx context.Context, userID uuid.UUID, color enums.FruitColor, placementID uuid.UUID) {
	s.metrics.IncConsistencyError()
	ctx = s.logg.WithFields(ctx, map[string]any{
		"color":        string(color),
		"placement_id": placementID.String(),
	})
	s.logg.Error(ctx, "placed counter disagrees with ledger", ErrCounterLedgerDrift)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return "error"
}
