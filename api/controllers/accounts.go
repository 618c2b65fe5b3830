package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/api/validators"
	"github.com/iump/fruittree-backend/internal/users"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
)

type provisionAccountRequest struct {
	ID          string `json:"id" validate:"required,uuid"`
	DisplayName string `json:"display_name" validate:"required,max=150"`
}

// AdminProvisionAccount mirrors an identity-service account locally and
// bootstraps its basket and pet.
func AdminProvisionAccount(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body provisionAccountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := uuid.Parse(body.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id"))
			return
		}

		result, err := svc.Provision(r.Context(), id, body.DisplayName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
