package users

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/pkg/db"
	"github.com/iump/fruittree-backend/pkg/db/models"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	maxDisplayNameLength = 150
	initialPetMeter      = 100
)

// ServiceParams groups dependencies for the accounts service.
type ServiceParams struct {
	DB   db.TxRunner
	Repo *Repository
	Now  func() time.Time
}

// Service provisions and resolves the local mirror of identity accounts.
type Service interface {
	Provision(ctx context.Context, id uuid.UUID, displayName string) (ProvisionResult, error)
	Get(ctx context.Context, id uuid.UUID) (AccountDTO, error)
}

type service struct {
	db   db.TxRunner
	repo *Repository
	now  func() time.Time
}

// NewService builds an accounts service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{db: params.DB, repo: params.Repo, now: now}, nil
}

// Provision creates the account together with its basket and pet. Calling it
// again for the same id fills in anything missing and reports Created=false.
func (s *service) Provision(ctx context.Context, id uuid.UUID, displayName string) (ProvisionResult, error) {
	if id == uuid.Nil {
		return ProvisionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		return ProvisionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		return ProvisionResult{}, pkgerrors.New(pkgerrors.CodeValidation, "display name is too long")
	}

	var result ProvisionResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindByID(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = &models.User{ID: id, DisplayName: name}
			if err := repo.Create(ctx, user); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account is being provisioned")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
			}
			result.Created = true
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
		}

		if err := repo.EnsureBasket(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket")
		}
		pet := &models.PetState{
			UserID:     id,
			Hunger:     initialPetMeter,
			Thirst:     initialPetMeter,
			LastUpdate: s.now().UTC(),
		}
		if err := repo.EnsurePetState(ctx, pet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pet state")
		}

		result.Account = FromModel(user)
		return nil
	})
	if err != nil {
		return ProvisionResult{}, err
	}
	return result, nil
}

// Get returns the account or ErrAccountNotFound.
func (s *service) Get(ctx context.Context, id uuid.UUID) (AccountDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccountDTO{}, ErrAccountNotFound
		}
		return AccountDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return FromModel(user), nil
}
