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

type TaskHandler struct {
	taskService       *services.TaskService
	projectService    *services.ProjectService
	membershipService *services.MembershipService
}

func NewTaskHandler(
	taskService *services.TaskService,
	projectService *services.ProjectService,
	membershipService *services.MembershipService,
) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		projectService:    projectService,
		membershipService: membershipService,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	ctx := context.Background()
	if !h.projectAllowed(c, ctx, projectID, userID, policy.ActionCreateChild) {
		return
	}

	task, err := h.taskService.Create(ctx, projectID, userID, req.Title, req.Description, req.Priority, req.DueDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, toTaskResponse(task))
}

func (h *TaskHandler) ListForProject(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()
	if !h.projectAllowed(c, ctx, projectID, userID, policy.ActionRead) {
		return
	}

	tasks, err := h.taskService.GetProjectTasks(ctx, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = toTaskResponse(&tasks[i])
	}
	_ = c.JSON(200, response)
}

func (h *TaskHandler) Get(c *drift.Context) {
	_, task, ok := h.loadTask(c, policy.ActionRead)
	if !ok {
		return
	}

	_ = c.JSON(200, toTaskResponse(task))
}

// Update edits task fields. Admins and owners edit any task; a plain member
// edits only tasks they authored.
func (h *TaskHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	ctx := context.Background()
	task, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	project, err := h.projectService.GetByID(ctx, task.ProjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	role, err := h.membershipService.GetRole(ctx, project.TeamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !canEditTask(role, task, userID) {
		if role == "" {
			c.NotFound("project not found")
		} else {
			c.Forbidden("not authorized")
		}
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.taskService.Update(ctx, task.ID, req.Title, req.Description, req.Status, req.Priority, req.DueDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, toTaskResponse(updated))
}

func (h *TaskHandler) Delete(c *drift.Context) {
	_, task, ok := h.loadTask(c, policy.ActionDelete)
	if !ok {
		return
	}

	if err := h.taskService.Delete(context.Background(), task.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}

func (h *TaskHandler) Assign(c *drift.Context) {
	_, task, ok := h.loadTask(c, policy.ActionUpdateMetadata)
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	if err := h.taskService.Assign(context.Background(), task.ID, req.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task assigned"})
}

func (h *TaskHandler) Unassign(c *drift.Context) {
	_, task, ok := h.loadTask(c, policy.ActionUpdateMetadata)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.taskService.Unassign(context.Background(), task.ID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task unassigned"})
}

func (h *TaskHandler) AddComment(c *drift.Context) {
	userID, task, ok := h.loadTask(c, policy.ActionComment)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Body == "" {
		c.BadRequest("body is required")
		return
	}

	comment, err := h.taskService.AddComment(context.Background(), task.ID, userID, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, dto.TaskCommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *TaskHandler) GetComments(c *drift.Context) {
	_, task, ok := h.loadTask(c, policy.ActionRead)
	if !ok {
		return
	}

	comments, err := h.taskService.GetComments(context.Background(), task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]dto.TaskCommentResponse, len(comments))
	for i, cm := range comments {
		response[i] = dto.TaskCommentResponse{
			ID:        cm.ID,
			TaskID:    cm.TaskID,
			Body:      cm.Body,
			CreatedAt: cm.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if cm.Author != nil {
			author := toUserResponse(cm.Author)
			response[i].Author = &author
		}
	}
	_ = c.JSON(200, response)
}

// canEditTask applies the author-or-admin rule: the policy table grants
// update_metadata to admins and owners, and a member keeps edit rights over
// tasks they created.
func canEditTask(role string, task *models.Task, userID uuid.UUID) bool {
	if policy.Can(role, policy.ActionUpdateMetadata, policy.KindTask) {
		return true
	}
	return role != "" && task.CreatorID == userID
}

// projectAllowed checks action for the caller against the project's team.
func (h *TaskHandler) projectAllowed(c *drift.Context, ctx context.Context, projectID, userID uuid.UUID, action policy.Action) bool {
	project, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}

	role, err := h.membershipService.GetRole(ctx, project.TeamID, userID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if !policy.Can(role, action, policy.KindTask) {
		if role == "" {
			c.NotFound("project not found")
		} else {
			c.Forbidden("not authorized")
		}
		return false
	}
	return true
}

func (h *TaskHandler) loadTask(c *drift.Context, action policy.Action) (uuid.UUID, *models.Task, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, nil, false
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return uuid.Nil, nil, false
	}

	ctx := context.Background()
	task, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, nil, false
	}

	if !h.projectAllowed(c, ctx, task.ProjectID, userID, action) {
		return uuid.Nil, nil, false
	}

	return userID, task, true
}
