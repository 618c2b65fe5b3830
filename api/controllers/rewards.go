package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/api/middleware"
	"github.com/iump/fruittree-backend/api/responses"
	"github.com/iump/fruittree-backend/api/validators"
	"github.com/iump/fruittree-backend/internal/rewards"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/pagination"
)

type issueRewardRequest struct {
	UserID    string  `json:"user_id" validate:"required,uuid"`
	Color     string  `json:"color" validate:"required,oneof=green red gold"`
	Reason    string  `json:"reason" validate:"required,max=255"`
	SourceRef *string `json:"source_ref" validate:"omitempty,max=128"`
}

// RewardHistory lists the caller's awards, newest first.
func RewardHistory(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.History(r.Context(), userID, cursor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminIssueReward credits a fruit to an account by hand. A replayed
// source_ref answers 200 with issued=false.
func AdminIssueReward(svc rewards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rewards service unavailable"))
			return
		}

		var body issueRewardRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := uuid.Parse(body.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id"))
			return
		}
		color, err := enums.ParseFruitColor(body.Color)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown fruit color"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithField(ctx, "issued_by", middleware.UserIDFromContext(ctx))
		}
		result, err := svc.IssueReward(ctx, rewards.IssueInput{
			UserID:    userID,
			Color:     color,
			Reason:    body.Reason,
			Origin:    enums.RewardOriginManual,
			SourceRef: body.SourceRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Issued {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
