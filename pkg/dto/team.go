package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

type UpdateTeamRequest struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type AddTeamMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type TransferOwnershipRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type TeamResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Visibility string    `json:"visibility"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Role       string    `json:"role,omitempty"`
}

type TeamMemberResponse struct {
	ID     uuid.UUID    `json:"id"`
	UserID uuid.UUID    `json:"user_id"`
	Role   string       `json:"role"`
	User   UserResponse `json:"user"`
}
