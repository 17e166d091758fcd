package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

type TaskService struct {
	db            *database.DB
	notifications *NotificationService
}

func NewTaskService(db *database.DB, notifications *NotificationService) *TaskService {
	return &TaskService{db: db, notifications: notifications}
}

const taskColumns = `id, project_id, creator_id, title, description, status, priority, due_date, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.CreatorID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func validTaskStatus(status string) bool {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
		return true
	}
	return false
}

func (s *TaskService) Create(ctx context.Context, projectID, creatorID uuid.UUID, title, description string, priority int, dueDate *time.Time) (*models.Task, error) {
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, creator_id, title, description, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns+`
	`, projectID, creatorID, title, description, priority, dueDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	assignees, err := s.getAssignees(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task.Assignees = assignees
	return task, nil
}

func (s *TaskService) GetProjectTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE project_id = $1
		ORDER BY priority DESC, created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.CreatorID, &t.Title, &t.Description,
			&t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, title, description, status *string, priority *int, dueDate *time.Time) (*models.Task, error) {
	if status != nil && !validTaskStatus(*status) {
		return nil, fmt.Errorf("invalid task status %q", *status)
	}

	// A new due date re-arms the due-soon reminder.
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    status = COALESCE($3, status),
		    priority = COALESCE($4, priority),
		    due_date = COALESCE($5, due_date),
		    due_notified = CASE WHEN $5::timestamptz IS NOT NULL THEN FALSE ELSE due_notified END,
		    updated_at = NOW()
		WHERE id = $6
		RETURNING `+taskColumns+`
	`, title, description, status, priority, dueDate, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Assign adds a user to the task and notifies them. The assignee must be a
// member of the task's project; the join enforces it without a prior read.
func (s *TaskService) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := s.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	result, err := s.db.Pool.Exec(ctx, `
		INSERT INTO task_assignees (task_id, user_id)
		SELECT $1, $2
		WHERE EXISTS(
			SELECT 1 FROM project_members pm
			JOIN tasks t ON t.project_id = pm.project_id
			WHERE t.id = $1 AND pm.user_id = $2
		)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}
	if result.RowsAffected() == 0 {
		exists, memberErr := s.isTaskAssignee(ctx, taskID, userID)
		if memberErr == nil && exists {
			return nil
		}
		return ErrNotTeamMember
	}

	s.notifications.Emit(ctx, userID, models.NotificationTaskAssigned,
		"Task assigned", fmt.Sprintf("You were assigned to %q", task.Title), &task.ID)
	return nil
}

func (s *TaskService) Unassign(ctx context.Context, taskID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2
	`, taskID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *TaskService) isTaskAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM task_assignees WHERE task_id = $1 AND user_id = $2)
	`, taskID, userID).Scan(&exists)
	return exists, err
}

func (s *TaskService) getAssignees(ctx context.Context, taskID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM task_assignees ta
		JOIN users u ON ta.user_id = u.id
		WHERE ta.task_id = $1
		ORDER BY ta.created_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Provider,
			&u.Plan, &u.Available, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *TaskService) AddComment(ctx context.Context, taskID, authorID uuid.UUID, body string) (*models.TaskComment, error) {
	var comment models.TaskComment
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO task_comments (task_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, author_id, body, created_at, updated_at
	`, taskID, authorID, body).Scan(
		&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

func (s *TaskService) GetComments(ctx context.Context, taskID uuid.UUID) ([]models.TaskComment, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.task_id, c.author_id, c.body, c.created_at, c.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM task_comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.task_id = $1
		ORDER BY c.created_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.TaskComment
	for rows.Next() {
		var c models.TaskComment
		var author models.User
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt,
			&author.ID, &author.Email, &author.Name, &author.AvatarURL, &author.Provider,
			&author.Plan, &author.Available, &author.CreatedAt, &author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Author = &author
		comments = append(comments, c)
	}
	return comments, nil
}

// NotifyDueSoon finds tasks due within the window that have not yet been
// flagged, notifies every assignee, and marks the task so the sweep never
// double-notifies. Meant to run from the background ticker.
func (s *TaskService) NotifyDueSoon(ctx context.Context, window time.Duration) error {
	rows, err := s.db.Pool.Query(ctx, `
		UPDATE tasks SET due_notified = TRUE
		WHERE due_notified = FALSE
		  AND status != $1
		  AND due_date IS NOT NULL
		  AND due_date <= NOW() + $2::interval
		RETURNING id, title
	`, models.TaskStatusDone, window.String())
	if err != nil {
		return err
	}
	defer rows.Close()

	type dueTask struct {
		id    uuid.UUID
		title string
	}
	var due []dueTask
	for rows.Next() {
		var t dueTask
		if err := rows.Scan(&t.id, &t.title); err != nil {
			return err
		}
		due = append(due, t)
	}
	rows.Close()

	for _, t := range due {
		assignees, err := s.getAssignees(ctx, t.id)
		if err != nil {
			return err
		}
		for _, u := range assignees {
			taskID := t.id
			s.notifications.Emit(ctx, u.ID, models.NotificationTaskDueSoon,
				"Task due soon", fmt.Sprintf("%q is due soon", t.title), &taskID)
		}
	}
	return nil
}
