package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JoinRequestStatusPending  = "pending"
	JoinRequestStatusApproved = "approved"
	JoinRequestStatusRejected = "rejected"
)

type JoinRequest struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"team_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Team        *Team     `json:"team,omitempty"`
	Requester   *User     `json:"requester,omitempty"`
}
