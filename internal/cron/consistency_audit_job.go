package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/enums"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const defaultAuditBatchSize = 200

// ConsistencyAuditJobParams configure the basket/ledger audit.
type ConsistencyAuditJobParams struct {
	Logger    *logger.Logger
	DB        db.TxRunner
	Repo      *basket.Repository
	Metrics   *metrics.InventoryMetrics
	BatchSize int
}

// NewConsistencyAuditJob builds the job that compares every basket's placed
// counters with its ledger rows. Drift is reported, never repaired.
func NewConsistencyAuditJob(params ConsistencyAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultAuditBatchSize
	}
	return &consistencyAuditJob{
		logg:    params.Logger,
		db:      params.DB,
		repo:    params.Repo,
		metrics: params.Metrics,
		batch:   batch,
	}, nil
}

type consistencyAuditJob struct {
	logg    *logger.Logger
	db      db.TxRunner
	repo    *basket.Repository
	metrics *metrics.InventoryMetrics
	batch   int
}

// Drift describes one basket color whose counter disagrees with the ledger.
type Drift struct {
	UserID  uuid.UUID
	Color   enums.FruitColor
	Counter int
	Ledger  int
}

func (d Drift) Error() string {
	return fmt.Sprintf("basket %s %s: placed counter %d, ledger rows %d", d.UserID, d.Color, d.Counter, d.Ledger)
}

func (j *consistencyAuditJob) Name() string { return "basket-consistency-audit" }

func (j *consistencyAuditJob) Run(ctx context.Context) error {
	var (
		after   uuid.UUID
		checked int
		result  error
	)
	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(result, err)
		}
		baskets, err := j.repo.ListBasketsAfter(ctx, after, j.batch)
		if err != nil {
			return multierr.Append(result, fmt.Errorf("list baskets: %w", err))
		}
		for _, b := range baskets {
			drifts, err := j.audit(ctx, b.UserID)
			if err != nil {
				result = multierr.Append(result, fmt.Errorf("audit basket %s: %w", b.UserID, err))
				continue
			}
			for _, d := range drifts {
				j.report(ctx, d)
				result = multierr.Append(result, d)
			}
			checked++
		}
		if len(baskets) < j.batch {
			break
		}
		after = baskets[len(baskets)-1].UserID
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"baskets_checked": checked,
		"drift_count":     len(multierr.Errors(result)),
	})
	j.logg.Info(logCtx, "basket consistency audit complete")
	return result
}

// audit reads one basket and its ledger counts under the basket's share lock.
func (j *consistencyAuditJob) audit(ctx context.Context, userID uuid.UUID) ([]Drift, error) {
	var drifts []Drift
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)
		b, err := repo.FindBasket(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		counts, err := repo.LedgerCounts(ctx, userID)
		if err != nil {
			return err
		}
		for _, color := range enums.FruitColors() {
			if b.Placed(color) != counts[color] {
				drifts = append(drifts, Drift{UserID: userID, Color: color, Counter: b.Placed(color), Ledger: counts[color]})
			}
		}
		for color, n := range counts {
			if !color.IsValid() {
				drifts = append(drifts, Drift{UserID: userID, Color: color, Ledger: n})
			}
		}
		return nil
	})
	return drifts, err
}

func (j *consistencyAuditJob) report(ctx context.Context, d Drift) {
	j.metrics.IncConsistencyError()
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"account_id":    d.UserID.String(),
		"color":         string(d.Color),
		"placed":        d.Counter,
		"ledger_placed": d.Ledger,
	})
	j.logg.Error(logCtx, "basket counter drift detected", d)
}
