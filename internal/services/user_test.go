package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/oauth"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewUserService(&database.DB{Pool: mock}), mock
}

func userRows(id uuid.UUID, email, name string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "name", "avatar_url", "provider", "provider_id", "plan", "available", "created_at", "updated_at",
	}).AddRow(id, email, name, nil, "github", "gh-1", models.PlanFree, true, now, now)
}

func TestUserService_FindOrCreateFromOAuth_Existing(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	info := &oauth.UserInfo{
		ID:       "gh-1",
		Email:    "user@example.com",
		Name:     "Test User",
		Provider: "github",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider`).
		WithArgs("github", "gh-1").
		WillReturnRows(userRows(userID, "user@example.com", "Test User"))

	user, err := svc.FindOrCreateFromOAuth(ctx, info)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_FindOrCreateFromOAuth_New(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	info := &oauth.UserInfo{
		ID:       "gh-1",
		Email:    "new@example.com",
		Name:     "New User",
		Provider: "github",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider`).
		WithArgs("github", "gh-1").
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("new@example.com", "New User", pgxmock.AnyArg(), "github", "gh-1").
		WillReturnRows(userRows(userID, "new@example.com", "New User"))

	user, err := svc.FindOrCreateFromOAuth(ctx, info)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByEmail_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByEmail(ctx, "ghost@example.com")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetPlan(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET plan`).
		WithArgs(models.PlanProfessional, "user@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.SetPlan(ctx, "user@example.com", models.PlanProfessional)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetPlan_InvalidPlan(t *testing.T) {
	svc, _ := setupUserService(t)

	err := svc.SetPlan(context.Background(), "user@example.com", models.Plan("platinum"))

	assert.Error(t, err)
}

func TestUserService_SetPlan_UnknownEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET plan`).
		WithArgs(models.PlanFree, "ghost@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetPlan(ctx, "ghost@example.com", models.PlanFree)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
