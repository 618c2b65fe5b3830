package controllers

import (
	"net/http"
	"time"

	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/api/validators"
	"github.com/iump/fruittree-backend/internal/pets"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
)

type updatePetRequest struct {
	Hunger   *int    `json:"hunger" validate:"omitempty,min=0,max=100"`
	Thirst   *int    `json:"thirst" validate:"omitempty,min=0,max=100"`
	Nickname *string `json:"nickname" validate:"omitempty,max=50"`
}

// PetGet applies pending decay and returns the caller's pet.
func PetGet(svc pets.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pet service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.ApplyAndGet(r.Context(), userID, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// PetUpdate feeds, waters or renames the caller's pet.
func PetUpdate(svc pets.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pet service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.Update(r.Context(), userID, pets.UpdateInput{
			Hunger:   body.Hunger,
			Thirst:   body.Thirst,
			Nickname: body.Nickname,
		}, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}
