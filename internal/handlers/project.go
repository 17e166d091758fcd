package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/teamflow/teamflow-api/internal/middleware"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/policy"
	"github.com/teamflow/teamflow-api/internal/services"
	"github.com/teamflow/teamflow-api/pkg/dto"
)

type ProjectHandler struct {
	projectService    *services.ProjectService
	membershipService *services.MembershipService
}

func NewProjectHandler(projectService *services.ProjectService, membershipService *services.MembershipService) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		membershipService: membershipService,
	}
}

// Create adds a project under a team. Members cannot create projects, only
// owners and admins.
func (h *ProjectHandler) Create(c *drift.Context) {
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

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	ctx := context.Background()
	role, err := h.membershipService.GetRole(ctx, teamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !policy.Can(role, policy.ActionCreateChild, policy.KindTeam) {
		c.Forbidden("not authorized")
		return
	}

	project, err := h.projectService.Create(ctx, teamID, userID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toProjectResponse(project))
}

func (h *ProjectHandler) ListForTeam(c *drift.Context) {
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
	if !policy.Can(role, policy.ActionRead, policy.KindProject) {
		c.NotFound("team not found")
		return
	}

	projects, err := h.projectService.GetTeamProjects(ctx, teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		response[i] = toProjectResponse(&projects[i])
	}
	_ = c.JSON(200, response)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionRead)
	if !ok {
		return
	}

	_ = c.JSON(200, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionUpdateMetadata)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.projectService.Update(context.Background(), project.ID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toProjectResponse(updated))
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := h.projectService.Delete(context.Background(), project.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}

func (h *ProjectHandler) GetMembers(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionRead)
	if !ok {
		return
	}

	members, err := h.projectService.GetMembers(context.Background(), project.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.ProjectMemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.ProjectMemberResponse{ID: m.ID, UserID: m.UserID}
		if m.User != nil {
			response[i].User = toUserResponse(m.User)
		}
	}
	_ = c.JSON(200, response)
}

func (h *ProjectHandler) AddMember(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionManageMembers)
	if !ok {
		return
	}

	var req dto.AddProjectMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	if err := h.projectService.AddMember(context.Background(), project.ID, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member added"})
}

func (h *ProjectHandler) RemoveMember(c *drift.Context) {
	_, project, ok := h.loadProject(c, policy.ActionManageMembers)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.projectService.RemoveMember(context.Background(), project.ID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

// loadProject parses the project id, loads it, and checks action against the
// caller's role in the owning team.
func (h *ProjectHandler) loadProject(c *drift.Context, action policy.Action) (uuid.UUID, *models.Project, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, nil, false
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return uuid.Nil, nil, false
	}

	ctx := context.Background()
	project, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, nil, false
	}

	role, err := h.membershipService.GetRole(ctx, project.TeamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, nil, false
	}
	if !policy.Can(role, action, policy.KindProject) {
		if role == "" {
			c.NotFound("project not found")
		} else {
			c.Forbidden("not authorized")
		}
		return uuid.Nil, nil, false
	}

	return userID, project, true
}
