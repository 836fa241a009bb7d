// Package ownership gates mutations of owned resources (events, comments).
package ownership

import (
	"fmt"
	"strings"

	"ms-engagement/internal/apperrors"
)

// Check compares the stored owner id of a resource with the authenticated caller.
// Identifiers are compared on their canonical string form; a mismatch is always
// ErrForbidden, never a silent no-op.
func Check(ownerID, callerID string) error {
	owner := strings.TrimSpace(ownerID)
	caller := strings.TrimSpace(callerID)
	if caller == "" || owner != caller {
		return fmt.Errorf("caller %q does not own resource: %w", caller, apperrors.ErrForbidden)
	}
	return nil
}
