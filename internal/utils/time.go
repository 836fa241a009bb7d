package utils

import (
	"fmt"
	"strings"
	"time"

	"ms-engagement/internal/apperrors"
)

// ParseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use RFC3339 or YYYY-MM-DD): %w", value, apperrors.ErrValidation)
}
