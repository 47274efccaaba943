// internal/model/errors.go
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a mandatory booking field is missing or malformed.
	ErrValidation = errors.New("missing required field")

	// ErrMissingField is the ErrValidation raised when a mandatory field is empty.
	ErrMissingField = fmt.Errorf("all fields are mandatory: %w", ErrValidation)

	// ErrTenantNotFound is returned when no client matches the request's subdomain.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrStoreUnavailable wraps every datastore connectivity or query failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
