package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier.
//
// The rules are conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidNode, "node id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateDimensions checks that a drawing area is positive and finite.
func ValidateDimensions(width, height float64) error {
	if !finite(width) || !finite(height) {
		return New(ErrCodeInvalidDimensions, "dimensions must be finite, got %vx%v", width, height)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "dimensions must be positive, got %vx%v", width, height)
	}
	return nil
}

// ValidateScaleRange checks a zoom scale extent.
func ValidateScaleRange(min, max float64) error {
	if !finite(min) || !finite(max) || min <= 0 {
		return New(ErrCodeInvalidScale, "scale extent must be positive, got [%v, %v]", min, max)
	}
	if min > max {
		return New(ErrCodeInvalidScale, "scale extent min %v exceeds max %v", min, max)
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor accepts "#rgb", "#rrggbb" and "#rrggbbaa" hex colors.
// An empty color means "use the default" and is valid.
func ValidateColor(c string) error {
	if c == "" {
		return nil
	}
	if !hexColor.MatchString(strings.TrimSpace(c)) {
		return New(ErrCodeInvalidColor, "invalid color %q (expected #rgb or #rrggbb)", c)
	}
	return nil
}

// ValidatePath validates a file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidInput, "path too long (max 4096 characters)")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidInput, "path contains null byte")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
