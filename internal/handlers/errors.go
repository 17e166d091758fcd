package handlers

import (
	"errors"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamflow/teamflow-api/internal/services"
)

// respondServiceError translates the service error taxonomy to HTTP. Every
// handler funnels unexpected errors through here so the mapping stays in one
// place.
func respondServiceError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.Unauthorized("not authenticated")
	case errors.Is(err, services.ErrNotAuthorized):
		c.Forbidden("not authorized")
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNotTeamMember),
		errors.Is(err, services.ErrQuotaExceeded):
		_ = c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrUsageExceeded):
		_ = c.JSON(429, map[string]string{"error": err.Error()})
	default:
		c.InternalServerError("internal server error")
	}
}
