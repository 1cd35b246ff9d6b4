package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength is the longest node or edge id accepted from diagram input.
const MaxIDLength = 256

// ReservedIDMarker is the separator used for synthetic self-loop helper
// nodes. Input ids must not contain it so helpers can never collide with
// user nodes.
const ReservedIDMarker = "---"

// ValidateID validates a node or edge identifier from diagram input.
// kind is used in the message only ("node", "edge", "parent").
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of MaxIDLength characters
//   - No ReservedIDMarker sequence
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "%s id too long (max %d characters)", kind, MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "%s id %q contains control characters", kind, id)
		}
	}

	if strings.Contains(id, ReservedIDMarker) {
		return New(ErrCodeInvalidID, "%s id %q contains reserved sequence %q", kind, id, ReservedIDMarker)
	}

	return nil
}

// ValidateDirection checks a rank direction. Empty is accepted and means
// "inherit". Comparison is case-sensitive, matching diagram sources.
func ValidateDirection(dir string) error {
	switch dir {
	case "", "TB", "TD", "BT", "LR", "RL":
		return nil
	}
	return New(ErrCodeInvalidDirection, "invalid direction: %q (must be one of: TB, TD, BT, LR, RL)", dir)
}

// ValidateSpacing rejects negative spacing values. Zero means "unset".
func ValidateSpacing(name string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative (got %g)", name, v)
	}
	return nil
}
