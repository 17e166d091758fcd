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

type JoinRequestHandler struct {
	joinRequestService  JoinRequestServiceInterface
	membershipService   MembershipServiceInterface
	teamService         TeamServiceInterface
	userService         UserServiceInterface
	notificationService NotificationServiceInterface
}

func NewJoinRequestHandler(
	joinRequestService JoinRequestServiceInterface,
	membershipService MembershipServiceInterface,
	teamService TeamServiceInterface,
	userService UserServiceInterface,
	notificationService NotificationServiceInterface,
) *JoinRequestHandler {
	return &JoinRequestHandler{
		joinRequestService:  joinRequestService,
		membershipService:   membershipService,
		teamService:         teamService,
		userService:         userService,
		notificationService: notificationService,
	}
}

// Create is the join entry point: immediate membership for public teams, a
// pending request for private ones.
func (h *JoinRequestHandler) Create(c *drift.Context) {
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
	result, err := h.joinRequestService.Create(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Joined {
		_ = c.JSON(200, dto.JoinResponse{Joined: true})
		return
	}

	h.notifyManagers(ctx, teamID, userID, result.Request.ID)

	resp := toJoinRequestResponse(result.Request)
	_ = c.JSON(201, dto.JoinResponse{Joined: false, Request: &resp})
}

// notifyManagers tells the owner and admins about a new pending request.
func (h *JoinRequestHandler) notifyManagers(ctx context.Context, teamID, requesterID, requestID uuid.UUID) {
	requester, err := h.userService.GetByID(ctx, requesterID)
	if err != nil {
		return
	}
	members, err := h.membershipService.GetMembers(ctx, teamID)
	if err != nil {
		return
	}
	for _, m := range members {
		if m.Role == models.RoleOwner || m.Role == models.RoleAdmin {
			h.notificationService.Emit(ctx, m.UserID, models.NotificationJoinRequestCreated,
				"Join request",
				requester.Name+" wants to join your team",
				&requestID)
		}
	}
}

// ListMine returns the caller's pending join requests.
func (h *JoinRequestHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requests, err := h.joinRequestService.GetUserPending(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = toJoinRequestResponse(&requests[i])
	}
	_ = c.JSON(200, response)
}

// ListForTeam returns a team's pending join requests. Requires manage_members.
func (h *JoinRequestHandler) ListForTeam(c *drift.Context) {
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
	if !h.canManage(c, ctx, teamID, userID) {
		return
	}

	requests, err := h.joinRequestService.GetTeamPending(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = toJoinRequestResponse(&requests[i])
	}
	_ = c.JSON(200, response)
}

func (h *JoinRequestHandler) Approve(c *drift.Context) {
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

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	ctx := context.Background()
	if !h.canManage(c, ctx, teamID, userID) {
		return
	}

	request, err := h.joinRequestService.Approve(ctx, requestID, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.notificationService.Emit(ctx, request.RequesterID, models.NotificationRequestApproved,
		"Request approved",
		"Your join request was approved",
		&request.TeamID)

	_ = c.JSON(200, toJoinRequestResponse(request))
}

func (h *JoinRequestHandler) Reject(c *drift.Context) {
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

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	ctx := context.Background()
	if !h.canManage(c, ctx, teamID, userID) {
		return
	}

	request, err := h.joinRequestService.Reject(ctx, requestID, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.notificationService.Emit(ctx, request.RequesterID, models.NotificationRequestRejected,
		"Request declined",
		"Your join request was declined",
		&request.TeamID)

	_ = c.JSON(200, toJoinRequestResponse(request))
}

// Cancel lets the requester withdraw their own pending request.
func (h *JoinRequestHandler) Cancel(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid request id")
		return
	}

	if err := h.joinRequestService.Cancel(context.Background(), requestID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "request withdrawn"})
}

func (h *JoinRequestHandler) canManage(c *drift.Context, ctx context.Context, teamID, userID uuid.UUID) bool {
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if !policy.Can(role, policy.ActionManageMembers, policy.KindTeam) {
		c.Forbidden("not authorized")
		return false
	}
	return true
}
