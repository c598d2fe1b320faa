package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("requested state change is not permitted from the current status")
	ErrPermissionDenied  = errors.New("acting user lacks role, ownership or invitation for this operation")
	ErrNotFound          = errors.New("requested entity does not exist")
	ErrDuplicateProposal = errors.New("vendor already holds a proposal for this project")
	ErrValidation        = errors.New("supplied data failed validation")
	ErrConflict          = errors.New("concurrent write lost conditional update")
)

// ErrMissingPriceValidity is a validation failure: a proposal cannot be
// submitted without a price validity date to derive its expiry from.
var ErrMissingPriceValidity = fmt.Errorf("%w: price validity date is required", ErrValidation)
