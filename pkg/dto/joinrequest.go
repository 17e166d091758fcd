package dto

import "github.com/google/uuid"

type JoinRequestResponse struct {
	ID        uuid.UUID     `json:"id"`
	TeamID    uuid.UUID     `json:"team_id"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	Team      *TeamResponse `json:"team,omitempty"`
	Requester *UserResponse `json:"requester,omitempty"`
}

// JoinResponse reports the outcome of a join attempt: public teams join
// immediately, private teams get a pending request.
type JoinResponse struct {
	Joined  bool                 `json:"joined"`
	Request *JoinRequestResponse `json:"request,omitempty"`
}
