package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Boundary error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; every service call returns either a value or exactly one of
// these kinds (possibly wrapped).
var (
	// ErrUnauthenticated means no usable credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotAuthorized means the caller's role denies the action.
	ErrNotAuthorized = errors.New("not authorized")

	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrRequestNotFound      = errors.New("join request not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// Conflicts: terminal and idempotent-safe, retrying without external
	// state change yields the same error.
	ErrAlreadyMember     = errors.New("user is already a team member")
	ErrDuplicatePending  = errors.New("a pending request already exists")
	ErrNotPending        = errors.New("already processed")
	ErrCannotRemoveOwner = errors.New("cannot remove team owner")
	ErrInvalidRole       = errors.New("role is not assignable")
	ErrNotTeamMember     = errors.New("user is not a team member")

	// ErrQuotaExceeded: team size is at the owner plan's limit.
	ErrQuotaExceeded = errors.New("team member limit reached")

	// ErrUsageExceeded: the per-day usage counter is at the plan's limit.
	ErrUsageExceeded = errors.New("daily usage limit reached")
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// The workflows rely on partial unique indexes (one pending row per pair)
// instead of read-then-write, so a concurrent duplicate surfaces here as a
// harmless Conflict rather than a second row.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
