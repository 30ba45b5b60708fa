package models

import "errors"

// ErrInvalidEntry is returned when an entry breaks a data-model invariant.
var ErrInvalidEntry = errors.New("invalid entry")

// ErrInvalidProfile is returned for profiles carrying unknown enum values.
var ErrInvalidProfile = errors.New("invalid profile")
