package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateDistance checks that a link or branch length is usable.
// Distances must be finite and non-negative; a nil distance is missing.
func ValidateDistance(d *float64) error {
	if d == nil {
		return New(ErrCodeInvalidGraph, "distance is missing")
	}
	if math.IsNaN(*d) || math.IsInf(*d, 0) {
		return New(ErrCodeInvalidGraph, "distance must be finite, got %v", *d)
	}
	if *d < 0 {
		return New(ErrCodeInvalidGraph, "distance must not be negative, got %v", *d)
	}
	return nil
}

// ValidateNonNegative checks a named numeric parameter is finite and >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidatePositive checks a named numeric parameter is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if err := ValidateNonNegative(name, v); err != nil {
		return err
	}
	if v == 0 {
		return New(ErrCodeInvalidConfig, "%s must be greater than zero", name)
	}
	return nil
}

// ValidateNodeName validates an entity name taken from user input.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidGraph, "node name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidGraph, "node name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node name %q contains invalid control characters", name)
		}
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in a
// request. Null bytes and control characters are rejected.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
