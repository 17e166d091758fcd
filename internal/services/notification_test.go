package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

func setupNotificationService(t *testing.T) (*NotificationService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewNotificationService(db, zap.NewNop().Sugar()), mock
}

func TestNotificationService_Emit(t *testing.T) {
	svc, mock := setupNotificationService(t)
	ctx := context.Background()
	recipientID := uuid.New()
	relatedID := uuid.New()

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(recipientID, models.NotificationTaskAssigned, "Task assigned", "details", &relatedID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc.Emit(ctx, recipientID, models.NotificationTaskAssigned, "Task assigned", "details", &relatedID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Emission is best-effort: a failed insert is swallowed.
func TestNotificationService_Emit_FailureIsDropped(t *testing.T) {
	svc, mock := setupNotificationService(t)
	ctx := context.Background()
	recipientID := uuid.New()

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(recipientID, models.NotificationRequestApproved, "Request approved", "", pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	svc.Emit(ctx, recipientID, models.NotificationRequestApproved, "Request approved", "", nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_GetUserNotifications_UnreadOnly(t *testing.T) {
	svc, mock := setupNotificationService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "recipient_id", "title", "message", "type", "related_id", "read", "created_at"}).
		AddRow(uuid.New(), userID, "Team invitation", "you were invited", models.NotificationInvitationReceived, nil, false, now)

	mock.ExpectQuery(`SELECT id, recipient_id, title, message, type, related_id, read, created_at`).
		WithArgs(userID).
		WillReturnRows(rows)

	notifications, err := svc.GetUserNotifications(ctx, userID, true)

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc, mock := setupNotificationService(t)
	ctx := context.Background()
	notificationID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications SET read`).
		WithArgs(notificationID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.MarkRead(ctx, notificationID, userID)

	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, mock := setupNotificationService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications SET read`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	err := svc.MarkAllRead(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
