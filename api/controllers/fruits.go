package controllers

import (
	"net/http"

	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/internal/fruits"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
)

// FruitLister exposes the catalog entries in display order.
type FruitLister interface {
	List() []fruits.Fruit
}

// ListFruits returns the fruit catalog.
func ListFruits(catalog FruitLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruit catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"fruits": catalog.List()})
	}
}
