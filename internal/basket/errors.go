package basket

import pkgerrors "github.com/iump/fruittree-backend/pkg/errors"

var (
	ErrInsufficientStock  = pkgerrors.New(pkgerrors.CodeConflict, "no fruit of that color is available")
	ErrPlacementNotFound  = pkgerrors.New(pkgerrors.CodeNotFound, "placement not found")
	ErrUnknownFruitColor  = pkgerrors.New(pkgerrors.CodeValidation, "unknown fruit color")
	ErrInvalidPosition    = pkgerrors.New(pkgerrors.CodeValidation, "position must be three finite numbers")
	ErrCounterLedgerDrift = pkgerrors.New(pkgerrors.CodeConsistency, "basket counters disagree with placed fruit")
)
