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

type TeamHandler struct {
	teamService       TeamServiceInterface
	membershipService MembershipServiceInterface
	quotaService      QuotaServiceInterface
}

func NewTeamHandler(
	teamService TeamServiceInterface,
	membershipService MembershipServiceInterface,
	quotaService QuotaServiceInterface,
) *TeamHandler {
	return &TeamHandler{
		teamService:       teamService,
		membershipService: membershipService,
		quotaService:      quotaService,
	}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	team, err := h.teamService.Create(context.Background(), req.Name, req.Visibility, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toTeamResponse(team, models.RoleOwner))
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, roles, err := h.teamService.GetUserTeams(context.Background(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i := range teams {
		response[i] = toTeamResponse(&teams[i], roles[i])
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	ctx := context.Background()
	team, err := h.teamService.GetByID(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Public teams are readable by any authenticated user.
	if role == "" && team.Visibility != models.VisibilityPublic {
		c.NotFound("team not found")
		return
	}

	_ = c.JSON(200, toTeamResponse(team, role))
}

func (h *TeamHandler) Update(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Visibility != "" && req.Visibility != models.VisibilityPublic && req.Visibility != models.VisibilityPrivate {
		c.BadRequest("invalid visibility")
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionUpdateMetadata) {
		return
	}

	team, err := h.teamService.Update(ctx, teamID, req.Name, req.Visibility)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toTeamResponse(team, ""))
}

func (h *TeamHandler) Delete(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionDelete) {
		return
	}

	if err := h.teamService.Delete(ctx, teamID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "team deleted"})
}

func (h *TeamHandler) GetMembers(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionRead) {
		return
	}

	members, err := h.membershipService.GetMembers(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.TeamMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.TeamMemberResponse{
			ID:     m.ID,
			UserID: m.UserID,
			Role:   m.Role,
		}
		if m.User != nil {
			response[i].User = toUserResponse(m.User)
		}
	}

	_ = c.JSON(200, response)
}

// AddMember admits a user directly, without an invitation or join request.
// The same quota-guarded insert applies, so a direct add races invitation
// acceptance safely.
func (h *TeamHandler) AddMember(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	var req dto.AddTeamMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionManageMembers) {
		return
	}

	if err := h.membershipService.AddMember(ctx, teamID, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, map[string]string{"message": "member added"})
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionManageMembers) {
		return
	}

	if err := h.membershipService.RemoveMember(ctx, teamID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

// Leave removes the caller's own membership. No policy check: any member may
// leave except the owner.
func (h *TeamHandler) Leave(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(context.Background(), teamID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "left team"})
}

func (h *TeamHandler) ChangeRole(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !policy.CanManageRoles(role) {
		c.Forbidden("not authorized")
		return
	}

	if err := h.membershipService.ChangeRole(ctx, teamID, targetID, req.Role); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "role updated"})
}

func (h *TeamHandler) TransferOwnership(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	var req dto.TransferOwnershipRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	if err := h.membershipService.TransferOwnership(context.Background(), teamID, userID, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "ownership transferred"})
}

func (h *TeamHandler) GetQuota(c *drift.Context) {
	userID, teamID, ok := h.parseTeamRequest(c)
	if !ok {
		return
	}

	ctx := context.Background()
	if !h.allowed(c, ctx, teamID, userID, policy.ActionRead) {
		return
	}

	quota, err := h.quotaService.TeamMembers(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toQuotaResponse(quota))
}

func (h *TeamHandler) parseTeamRequest(c *drift.Context) (userID, teamID uuid.UUID, ok bool) {
	userID = middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid team id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, teamID, true
}

// allowed resolves the caller's role and checks the action against the team.
// Non-members get a 404 on reads to avoid leaking team existence, 403
// otherwise.
func (h *TeamHandler) allowed(c *drift.Context, ctx context.Context, teamID, userID uuid.UUID, action policy.Action) bool {
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if policy.Can(role, action, policy.KindTeam) {
		return true
	}
	if role == "" && action == policy.ActionRead {
		c.NotFound("team not found")
	} else {
		c.Forbidden("not authorized")
	}
	return false
}
