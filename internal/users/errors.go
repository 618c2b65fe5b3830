package users

import pkgerrors "github.com/iump/fruittree-backend/pkg/errors"

// ErrAccountNotFound is returned when an operation names an unknown account.
var ErrAccountNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
