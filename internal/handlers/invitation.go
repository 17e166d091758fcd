package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamflow/teamflow-api/internal/middleware"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/policy"
	"github.com/teamflow/teamflow-api/pkg/dto"
)

type InvitationHandler struct {
	invitationService   InvitationServiceInterface
	membershipService   MembershipServiceInterface
	teamService         TeamServiceInterface
	userService         UserServiceInterface
	notificationService NotificationServiceInterface
	emailService        EmailServiceInterface
}

func NewInvitationHandler(
	invitationService InvitationServiceInterface,
	membershipService MembershipServiceInterface,
	teamService TeamServiceInterface,
	userService UserServiceInterface,
	notificationService NotificationServiceInterface,
	emailService EmailServiceInterface,
) *InvitationHandler {
	return &InvitationHandler{
		invitationService:   invitationService,
		membershipService:   membershipService,
		teamService:         teamService,
		userService:         userService,
		notificationService: notificationService,
		emailService:        emailService,
	}
}

// Create invites a user by email. Requires manage_members on the team.
func (h *InvitationHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	ctx := context.Background()
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !policy.Can(role, policy.ActionManageMembers, policy.KindTeam) {
		c.Forbidden("not authorized")
		return
	}

	invitee, err := h.userService.GetByEmail(ctx, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	invitation, err := h.invitationService.Create(ctx, teamID, userID, invitee.ID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	team, teamErr := h.teamService.GetByID(ctx, teamID)
	inviter, inviterErr := h.userService.GetByID(ctx, userID)
	if teamErr == nil && inviterErr == nil {
		h.notificationService.Emit(ctx, invitee.ID, models.NotificationInvitationReceived,
			"Team invitation",
			inviter.Name+" invited you to join "+team.Name,
			&invitation.ID)
		_ = h.emailService.SendTeamInvitation(invitee.Email, team.Name, inviter.Name, req.Message)
	}

	_ = c.JSON(201, toInvitationResponse(invitation))
}

// ListMine returns the caller's pending invitations.
func (h *InvitationHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	invitations, err := h.invitationService.GetUserPending(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.InvitationResponse, len(invitations))
	for i := range invitations {
		response[i] = toInvitationResponse(&invitations[i])
	}
	_ = c.JSON(200, response)
}

// ListForTeam returns a team's pending invitations. Requires manage_members.
func (h *InvitationHandler) ListForTeam(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	ctx := context.Background()
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !policy.Can(role, policy.ActionManageMembers, policy.KindTeam) {
		c.Forbidden("not authorized")
		return
	}

	invitations, err := h.invitationService.GetTeamPending(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.InvitationResponse, len(invitations))
	for i := range invitations {
		response[i] = toInvitationResponse(&invitations[i])
	}
	_ = c.JSON(200, response)
}

func (h *InvitationHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	invitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	ctx := context.Background()
	invitation, err := h.invitationService.Accept(ctx, invitationID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user, userErr := h.userService.GetByID(ctx, userID)
	if userErr == nil {
		h.notificationService.Emit(ctx, invitation.InviterID, models.NotificationInvitationAccepted,
			"Invitation accepted",
			user.Name+" accepted your invitation",
			&invitation.ID)
		h.notificationService.Emit(ctx, userID, models.NotificationMembershipGranted,
			"Joined team",
			"You are now a team member",
			&invitation.TeamID)
	}

	_ = c.JSON(200, toInvitationResponse(invitation))
}

func (h *InvitationHandler) Reject(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	invitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	ctx := context.Background()
	invitation, err := h.invitationService.Reject(ctx, invitationID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user, userErr := h.userService.GetByID(ctx, userID)
	if userErr == nil {
		h.notificationService.Emit(ctx, invitation.InviterID, models.NotificationInvitationRejected,
			"Invitation declined",
			user.Name+" declined your invitation",
			&invitation.ID)
	}

	_ = c.JSON(200, toInvitationResponse(invitation))
}

// Cancel withdraws a team's pending invitation. Requires manage_members.
func (h *InvitationHandler) Cancel(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	invitationID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	ctx := context.Background()
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !policy.Can(role, policy.ActionManageMembers, policy.KindTeam) {
		c.Forbidden("not authorized")
		return
	}

	if err := h.invitationService.Cancel(ctx, invitationID, teamID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation cancelled"})
}
