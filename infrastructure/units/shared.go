// Package units provides domain-specific pipeline units that implement
// the ports.Unit interface for the go-tally aggregation engine.
package units

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Common errors returned by aggregation units.
// These errors provide consistent error handling across all unit implementations.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrNoRatings is returned when RequireRatings is set and the
	// collection has no first group to define an aggregation universe.
	ErrNoRatings = errors.New("no ratings available for aggregation")

	// ErrTooFewGroups is returned when the collection has fewer groups
	// than the configured minimum.
	ErrTooFewGroups = errors.New("collection has fewer groups than required")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
