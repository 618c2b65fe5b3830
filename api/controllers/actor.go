package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/api/middleware"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
)

// actorID resolves the authenticated account from the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
