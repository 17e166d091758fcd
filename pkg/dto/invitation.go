package dto

import "github.com/google/uuid"

type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type InvitationResponse struct {
	ID        uuid.UUID     `json:"id"`
	TeamID    uuid.UUID     `json:"team_id"`
	Message   string        `json:"message"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	Team      *TeamResponse `json:"team,omitempty"`
	Inviter   *UserResponse `json:"inviter,omitempty"`
	Invitee   *UserResponse `json:"invitee,omitempty"`
}
