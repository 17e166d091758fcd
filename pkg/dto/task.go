package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type AssignTaskRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type TaskResponse struct {
	ID          uuid.UUID      `json:"id"`
	ProjectID   uuid.UUID      `json:"project_id"`
	CreatorID   uuid.UUID      `json:"creator_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    int            `json:"priority"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Assignees   []UserResponse `json:"assignees,omitempty"`
}

type TaskCommentResponse struct {
	ID        uuid.UUID     `json:"id"`
	TaskID    uuid.UUID     `json:"task_id"`
	Body      string        `json:"body"`
	CreatedAt string        `json:"created_at"`
	Author    *UserResponse `json:"author,omitempty"`
}
