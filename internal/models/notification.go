package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationInvitationReceived = "invitation_received"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationInvitationRejected = "invitation_rejected"
	NotificationJoinRequestCreated = "join_request_created"
	NotificationRequestApproved    = "join_request_approved"
	NotificationRequestRejected    = "join_request_rejected"
	NotificationMembershipGranted  = "membership_granted"
	NotificationTaskAssigned       = "task_assigned"
	NotificationTaskDueSoon        = "task_due_soon"
)

// Notification is append-only; only the read flag is ever mutated.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Type        string     `json:"type"`
	RelatedID   *uuid.UUID `json:"related_id,omitempty"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}
