package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/oauth"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
		Plan:       models.PlanFree,
		Available:  true,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id, plan, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, email, name, avatar_url, provider, provider_id, plan, available, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID, user.Plan, user.Available).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.Plan, &user.Available,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithPlan sets the user's subscription plan
func WithPlan(plan models.Plan) UserOption {
	return func(u *models.User) {
		u.Plan = plan
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateTeam creates a test team with the given owner
func (f *Fixtures) CreateTeam(t *testing.T, owner *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:       fmt.Sprintf("Test Team %d", f.counter),
		Visibility: models.VisibilityPrivate,
		OwnerID:    owner.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, visibility, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, visibility, owner_id, created_at, updated_at
	`, team.Name, team.Visibility, team.OwnerID).Scan(
		&team.ID, &team.Name, &team.Visibility, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
	`, team.ID, owner.ID, models.RoleOwner)
	if err != nil {
		t.Fatalf("failed to add owner as member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// WithVisibility sets the team's visibility
func WithVisibility(visibility string) TeamOption {
	return func(t *models.Team) {
		t.Visibility = visibility
	}
}

// AddTeamMember adds a member to a team with the given role
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User, role string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, user.ID, role)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateInvitation creates a pending invitation for the given team and invitee
func (f *Fixtures) CreateInvitation(t *testing.T, team *models.Team, inviter, invitee *models.User) *models.Invitation {
	t.Helper()
	ctx := context.Background()

	inv := &models.Invitation{
		TeamID:    team.ID,
		InviterID: inviter.ID,
		InviteeID: invitee.ID,
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO team_invitations (team_id, inviter_id, invitee_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, updated_at
	`, inv.TeamID, inv.InviterID, inv.InviteeID, "").Scan(
		&inv.ID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	return inv
}

// CreateJoinRequest creates a pending join request for the given team
func (f *Fixtures) CreateJoinRequest(t *testing.T, team *models.Team, requester *models.User) *models.JoinRequest {
	t.Helper()
	ctx := context.Background()

	req := &models.JoinRequest{
		TeamID:      team.ID,
		RequesterID: requester.ID,
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (team_id, requester_id)
		VALUES ($1, $2)
		RETURNING id, status, created_at, updated_at
	`, req.TeamID, req.RequesterID).Scan(
		&req.ID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create join request: %v", err)
	}

	return req
}

// CreateProject creates a test project in the given team
func (f *Fixtures) CreateProject(t *testing.T, team *models.Team, creator *models.User) *models.Project {
	t.Helper()
	f.counter++
	ctx := context.Background()

	project := &models.Project{
		TeamID:    team.ID,
		CreatorID: creator.ID,
		Name:      fmt.Sprintf("Test Project %d", f.counter),
	}

	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO projects (team_id, creator_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, description, created_at, updated_at
	`, project.TeamID, project.CreatorID, project.Name, "").Scan(
		&project.ID, &project.Description, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
	`, project.ID, creator.ID)
	if err != nil {
		t.Fatalf("failed to add creator as project member: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return project
}

// CreateTask creates a test task in the given project
func (f *Fixtures) CreateTask(t *testing.T, project *models.Project, creator *models.User) *models.Task {
	t.Helper()
	f.counter++
	ctx := context.Background()

	task := &models.Task{
		ProjectID: project.ID,
		CreatorID: creator.ID,
		Title:     fmt.Sprintf("Test Task %d", f.counter),
	}

	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, creator_id, title, description, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, description, status, priority, created_at, updated_at
	`, task.ProjectID, task.CreatorID, task.Title, "", 0).Scan(
		&task.ID, &task.Description, &task.Status, &task.Priority, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
