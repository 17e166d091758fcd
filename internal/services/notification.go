package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

// NotificationService records in-app notifications. Emission is best-effort:
// a failed insert is logged and dropped, never surfaced to the caller, so a
// notification outage cannot fail a membership decision.
type NotificationService struct {
	db  *database.DB
	log *zap.SugaredLogger
}

func NewNotificationService(db *database.DB, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{db: db, log: log}
}

// Emit writes one notification row. No error return; see the service doc.
func (s *NotificationService) Emit(ctx context.Context, recipientID uuid.UUID, notifType, title, message string, relatedID *uuid.UUID) {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO notifications (recipient_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5)
	`, recipientID, notifType, title, message, relatedID)
	if err != nil {
		s.log.Warnw("failed to emit notification",
			"recipient_id", recipientID,
			"type", notifType,
			"error", err,
		)
	}
}

// EmitToMany fans one notification out to several recipients.
func (s *NotificationService) EmitToMany(ctx context.Context, recipientIDs []uuid.UUID, notifType, title, message string, relatedID *uuid.UUID) {
	for _, id := range recipientIDs {
		s.Emit(ctx, id, notifType, title, message, relatedID)
	}
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, title, message, type, related_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := s.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2
	`, notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE
	`, userID)
	return err
}
