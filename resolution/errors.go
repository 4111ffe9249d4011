package resolution

import "errors"

var (
	// ErrNotFound means the referenced entity no longer exists; the UI
	// element that referenced it is stale.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyResolved means another staff member completed the
	// transition first. Benign: the loser's attempt is a no-op.
	ErrAlreadyResolved = errors.New("entity already resolved")

	// ErrPermissionDenied means the acting staff member lacks the required
	// capability. Wrapped with the capability name at the check site.
	ErrPermissionDenied = errors.New("missing capability")
)
