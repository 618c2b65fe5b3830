package pets

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/db/models"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	maxNicknameLength = 50
	maxCASAttempts    = 5
)

// ServiceParams groups dependencies for the pet service.
type ServiceParams struct {
	Repo     *Repository
	UserRepo *users.Repository
	Rules    DecayRules
	Logger   *logger.Logger
}

// Service reads and updates pets, applying decay lazily on every access.
type Service interface {
	ApplyAndGet(ctx context.Context, userID uuid.UUID, now time.Time) (PetStateDTO, error)
	Update(ctx context.Context, userID uuid.UUID, in UpdateInput, now time.Time) (PetStateDTO, error)
}

type service struct {
	repo     *Repository
	userRepo *users.Repository
	rules    DecayRules
	logg     *logger.Logger
}

// NewService builds a pet service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pet repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.Rules.Period <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decay period must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		userRepo: params.UserRepo,
		rules:    params.Rules,
		logg:     logg,
	}, nil
}

// ApplyAndGet returns the pet after applying any decay due at now. Storage is
// written only when at least one period has elapsed.
func (s *service) ApplyAndGet(ctx context.Context, userID uuid.UUID, now time.Time) (PetStateDTO, error) {
	now = now.UTC()
	pet, err := s.mutate(ctx, userID, now, func(pet *models.PetState) bool {
		next, changed := ApplyDecay(stateOf(pet), now, s.rules)
		if !changed {
			return false
		}
		pet.Hunger, pet.Thirst, pet.LastUpdate = next.Hunger, next.Thirst, next.LastUpdate
		return true
	})
	if err != nil {
		return PetStateDTO{}, err
	}
	return fromModel(pet), nil
}

// Update applies due decay, then the requested fields, and stamps now.
func (s *service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput, now time.Time) (PetStateDTO, error) {
	nickname, err := validateUpdate(in)
	if err != nil {
		return PetStateDTO{}, err
	}

	now = now.UTC()
	pet, err := s.mutate(ctx, userID, now, func(pet *models.PetState) bool {
		if next, changed := ApplyDecay(stateOf(pet), now, s.rules); changed {
			pet.Hunger, pet.Thirst = next.Hunger, next.Thirst
		}
		if in.Hunger != nil {
			pet.Hunger = *in.Hunger
		}
		if in.Thirst != nil {
			pet.Thirst = *in.Thirst
		}
		if in.Nickname != nil {
			pet.Nickname = nickname
		}
		if now.After(pet.LastUpdate) {
			pet.LastUpdate = now
		}
		return true
	})
	if err != nil {
		return PetStateDTO{}, err
	}
	return fromModel(pet), nil
}

// mutate loads the pet, lets change edit it and writes it back with a
// revision check. A lost race reloads the winner's state and reapplies change
// to it, so decay already written by someone else is never applied twice.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, now time.Time, change func(*models.PetState) bool) (*models.PetState, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	now = now.UTC()
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		pet, err := s.load(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if !change(pet) {
			return pet, nil
		}
		won, err := s.repo.CompareAndSet(ctx, pet)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save pet state")
		}
		if won {
			return pet, nil
		}
		s.logg.Debug(s.logg.WithField(ctx, "account_id", userID.String()), "pet state changed concurrently, reloading")
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "pet state is busy, retry later")
}

func (s *service) load(ctx context.Context, userID uuid.UUID, now time.Time) (*models.PetState, error) {
	pet, err := s.repo.Find(ctx, userID)
	if err == nil {
		return pet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pet state")
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if !exists {
		return nil, users.ErrAccountNotFound
	}
	if err := s.repo.CreateIfAbsent(ctx, &models.PetState{
		UserID:     userID,
		Hunger:     maxMeter,
		Thirst:     maxMeter,
		LastUpdate: now.UTC(),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pet state")
	}
	pet, err = s.repo.Find(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pet state")
	}
	return pet, nil
}

func validateUpdate(in UpdateInput) (*string, error) {
	if in.Hunger == nil && in.Thirst == nil && in.Nickname == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	if in.Hunger != nil && (*in.Hunger < minMeter || *in.Hunger > maxMeter) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hunger must be between 0 and 100")
	}
	if in.Thirst != nil && (*in.Thirst < minMeter || *in.Thirst > maxMeter) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "thirst must be between 0 and 100")
	}
	if in.Nickname == nil {
		return nil, nil
	}
	name := strings.TrimSpace(*in.Nickname)
	if name == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(name) > maxNicknameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nickname must be at most 50 characters")
	}
	return &name, nil
}
