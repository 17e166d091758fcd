package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

func setupInvitationService(t *testing.T) (*InvitationService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewInvitationService(db, NewMembershipService(db)), mock
}

func invitationRows(inv *models.Invitation) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "team_id", "inviter_id", "invitee_id", "message", "status", "created_at", "updated_at",
	}).AddRow(inv.ID, inv.TeamID, inv.InviterID, inv.InviteeID, inv.Message, inv.Status, inv.CreatedAt, inv.UpdatedAt)
}

func pendingInvitation() *models.Invitation {
	now := time.Now()
	return &models.Invitation{
		ID:        uuid.New(),
		TeamID:    uuid.New(),
		InviterID: uuid.New(),
		InviteeID: uuid.New(),
		Message:   "join us",
		Status:    models.InvitationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInvitationService_Create(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM team_members`).
		WithArgs(inv.TeamID, inv.InviteeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO team_invitations`).
		WithArgs(inv.TeamID, inv.InviterID, inv.InviteeID, inv.Message).
		WillReturnRows(invitationRows(inv))

	created, err := svc.Create(ctx, inv.TeamID, inv.InviterID, inv.InviteeID, inv.Message)

	require.NoError(t, err)
	assert.Equal(t, inv.ID, created.ID)
	assert.Equal(t, models.InvitationStatusPending, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Create_AlreadyMember(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	teamID := uuid.New()
	inviteeID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM team_members`).
		WithArgs(teamID, inviteeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(ctx, teamID, uuid.New(), inviteeID, "")

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Create_DuplicatePending(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	teamID := uuid.New()
	inviteeID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM team_members`).
		WithArgs(teamID, inviteeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectQuery(`INSERT INTO team_invitations`).
		WithArgs(teamID, pgxmock.AnyArg(), inviteeID, "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Create(ctx, teamID, uuid.New(), inviteeID, "")

	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Accept(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT .+ FROM team_invitations WHERE id .+ FOR UPDATE`).
		WithArgs(inv.ID).
		WillReturnRows(invitationRows(inv))

	mock.ExpectQuery(`SELECT u\.plan FROM teams t`).
		WithArgs(inv.TeamID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow(models.PlanFree))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM team_members`).
		WithArgs(inv.TeamID, inv.InviteeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(inv.TeamID, inv.InviteeID, models.RoleMember, 15).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`UPDATE team_invitations SET status`).
		WithArgs(models.InvitationStatusAccepted, inv.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectCommit()

	accepted, err := svc.Accept(ctx, inv.ID, inv.InviteeID)

	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusAccepted, accepted.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A quota failure rolls the whole acceptance back and leaves the invitation
// pending for a later retry.
func TestInvitationService_Accept_QuotaExceeded(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT .+ FROM team_invitations WHERE id .+ FOR UPDATE`).
		WithArgs(inv.ID).
		WillReturnRows(invitationRows(inv))

	mock.ExpectQuery(`SELECT u\.plan FROM teams t`).
		WithArgs(inv.TeamID).
		WillReturnRows(pgxmock.NewRows([]string{"plan"}).AddRow(models.PlanFree))

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM team_members`).
		WithArgs(inv.TeamID, inv.InviteeID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(inv.TeamID, inv.InviteeID, models.RoleMember, 15).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	mock.ExpectRollback()

	_, err := svc.Accept(ctx, inv.ID, inv.InviteeID)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Accept_WrongInvitee(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT .+ FROM team_invitations WHERE id .+ FOR UPDATE`).
		WithArgs(inv.ID).
		WillReturnRows(invitationRows(inv))

	mock.ExpectRollback()

	_, err := svc.Accept(ctx, inv.ID, uuid.New())

	assert.ErrorIs(t, err, ErrInvitationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Accept_AlreadyProcessed(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()
	inv.Status = models.InvitationStatusRejected

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT .+ FROM team_invitations WHERE id .+ FOR UPDATE`).
		WithArgs(inv.ID).
		WillReturnRows(invitationRows(inv))

	mock.ExpectRollback()

	_, err := svc.Accept(ctx, inv.ID, inv.InviteeID)

	assert.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Reject(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()
	rejected := *inv
	rejected.Status = models.InvitationStatusRejected

	mock.ExpectQuery(`UPDATE team_invitations SET status`).
		WithArgs(models.InvitationStatusRejected, inv.ID, inv.InviteeID, models.InvitationStatusPending).
		WillReturnRows(invitationRows(&rejected))

	result, err := svc.Reject(ctx, inv.ID, inv.InviteeID)

	require.NoError(t, err)
	assert.Equal(t, models.InvitationStatusRejected, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Reject_AlreadyProcessed(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	inv := pendingInvitation()
	inv.Status = models.InvitationStatusAccepted

	mock.ExpectQuery(`UPDATE team_invitations SET status`).
		WithArgs(models.InvitationStatusRejected, inv.ID, inv.InviteeID, models.InvitationStatusPending).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`SELECT .+ FROM team_invitations WHERE id`).
		WithArgs(inv.ID).
		WillReturnRows(invitationRows(inv))

	_, err := svc.Reject(ctx, inv.ID, inv.InviteeID)

	assert.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_Cancel_NotFound(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()
	invitationID := uuid.New()
	teamID := uuid.New()

	mock.ExpectExec(`DELETE FROM team_invitations`).
		WithArgs(invitationID, teamID, models.InvitationStatusPending).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Cancel(ctx, invitationID, teamID)

	assert.ErrorIs(t, err, ErrInvitationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationService_ExpireStale(t *testing.T) {
	svc, mock := setupInvitationService(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM team_invitations`).
		WithArgs(models.InvitationStatusPending, "720h0m0s").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := svc.ExpireStale(ctx, 720*time.Hour)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
