package controllers

import (
	"net/http"

	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/api/validators"
	"github.com/iump/fruittree-backend/internal/basket"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
)

type placeFruitRequest struct {
	Color    string    `json:"color" validate:"required,oneof=green red gold"`
	Position []float64 `json:"position" validate:"required,len=3"`
}

type returnFruitResponse struct {
	PlacementID string           `json:"placement_id"`
	Color       enums.FruitColor `json:"color"`
}

// BasketSnapshot returns the caller's counters and placements.
func BasketSnapshot(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Snapshot(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// BasketPlace hangs one available fruit on the tree.
func BasketPlace(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body placeFruitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		color, err := enums.ParseFruitColor(body.Color)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, basket.ErrUnknownFruitColor)
			return
		}
		pos, err := basket.NewPosition(body.Position)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Place(r.Context(), userID, color, pos)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// BasketReturn takes one of the caller's placements off the tree.
func BasketReturn(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		placementID, err := validators.ParseUUIDParam(r, "placementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		color, err := svc.Return(r.Context(), userID, placementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, returnFruitResponse{PlacementID: placementID.String(), Color: color})
	}
}
