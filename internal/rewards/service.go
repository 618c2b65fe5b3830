package rewards

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/db/models"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	maxReasonLength    = 255
	maxSourceRefLength = 128
)

// ServiceParams groups dependencies for reward issuance.
type ServiceParams struct {
	Basket   basket.Service
	Repo     *Repository
	UserRepo *users.Repository
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service credits fruit to accounts and exposes their award history.
type Service interface {
	IssueReward(ctx context.Context, in IssueInput) (IssueResult, error)
	History(ctx context.Context, userID uuid.UUID, cursor string, limit int) (HistoryPage, error)
}

type service struct {
	basket   basket.Service
	repo     *Repository
	userRepo *users.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the reward service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Basket == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket service is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rewards repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
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
		basket:   params.Basket,
		repo:     params.Repo,
		userRepo: params.UserRepo,
		logg:     logg,
		now:      now,
	}, nil
}

// IssueReward adds one unit of the color to the account and records the
// award in the same transaction.
func (s *service) IssueReward(ctx context.Context, in IssueInput) (IssueResult, error) {
	in, err := normalizeIssue(in)
	if err != nil {
		return IssueResult{}, err
	}

	var award *models.FruitAward
	credited, err := s.basket.Credit(ctx, in.UserID, in.Color, func(tx *gorm.DB) (bool, error) {
		award = nil
		repo := s.repo.WithTx(tx)
		if in.SourceRef != nil {
			_, err := repo.FindBySource(ctx, in.UserID, in.Origin, *in.SourceRef)
			if err == nil {
				return false, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load award")
			}
		}
		row := &models.FruitAward{
			ID:        uuid.New(),
			UserID:    in.UserID,
			Color:     in.Color,
			Reason:    in.Reason,
			Origin:    in.Origin,
			SourceRef: in.SourceRef,
			AwardedAt: s.now().UTC(),
		}
		if err := repo.Create(ctx, row); err != nil {
			return false, err
		}
		award = row
		return true, nil
	})
	if err != nil {
		if in.SourceRef != nil && db.IsUniqueViolation(err, "") {
			return s.duplicate(ctx, in), nil
		}
		if pkgerrors.As(err) == nil {
			return IssueResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create award")
		}
		return IssueResult{}, err
	}
	if !credited {
		return s.duplicate(ctx, in), nil
	}

	dto := fromModel(*award)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"account_id": in.UserID.String(),
		"color":      string(in.Color),
		"origin":     string(in.Origin),
		"award_id":   award.ID.String(),
	})
	s.logg.Info(ctx, "fruit issued")
	return IssueResult{Issued: true, Award: &dto}, nil
}

func (s *service) duplicate(ctx context.Context, in IssueInput) IssueResult {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"account_id": in.UserID.String(),
		"origin":     string(in.Origin),
		"source_ref": *in.SourceRef,
	})
	s.logg.Info(ctx, "reward already issued for source")
	return IssueResult{Issued: false}
}

// History lists the account's awards, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID, cursor string, limit int) (HistoryPage, error) {
	if userID == uuid.Nil {
		return HistoryPage{}, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	decoded, err := pagination.ParseCursor(cursor)
	if err != nil {
		return HistoryPage{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return HistoryPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !exists {
		return HistoryPage{}, users.ErrAccountNotFound
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListByUser(ctx, userID, decoded, pagination.LimitWithBuffer(limit))
	if err != nil {
		return HistoryPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list awards")
	}

	page := HistoryPage{Items: make([]AwardDTO, 0, pageSize)}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.AwardedAt, ID: last.ID})
	}
	for _, row := range rows {
		page.Items = append(page.Items, fromModel(row))
	}
	return page, nil
}

func normalizeIssue(in IssueInput) (IssueInput, error) {
	if in.UserID == uuid.Nil {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if !in.Color.IsValid() {
		return in, basket.ErrUnknownFruitColor
	}
	if in.Origin == "" {
		in.Origin = enums.RewardOriginManual
	}
	if !in.Origin.IsValid() {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "unknown reward origin")
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if utf8.RuneCountInString(in.Reason) > maxReasonLength {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "reason must be at most 255 characters")
	}
	if in.SourceRef != nil {
		ref := strings.TrimSpace(*in.SourceRef)
		switch {
		case ref == "":
			in.SourceRef = nil
		case len(ref) > maxSourceRefLength:
			return in, pkgerrors.New(pkgerrors.CodeValidation, "source reference is too long")
		default:
			in.SourceRef = &ref
		}
	}
	return in, nil
}
