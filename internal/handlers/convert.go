package handlers

import (
	"time"

	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/services"
	"github.com/teamflow/teamflow-api/pkg/dto"
)

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Provider:  u.Provider,
		Plan:      string(u.Plan),
		Available: u.Available,
	}
}

func toTeamResponse(t *models.Team, role string) dto.TeamResponse {
	return dto.TeamResponse{
		ID:         t.ID,
		Name:       t.Name,
		Visibility: t.Visibility,
		OwnerID:    t.OwnerID,
		Role:       role,
	}
}

func toInvitationResponse(inv *models.Invitation) dto.InvitationResponse {
	resp := dto.InvitationResponse{
		ID:        inv.ID,
		TeamID:    inv.TeamID,
		Message:   inv.Message,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Team != nil {
		team := toTeamResponse(inv.Team, "")
		resp.Team = &team
	}
	if inv.Inviter != nil {
		inviter := toUserResponse(inv.Inviter)
		resp.Inviter = &inviter
	}
	if inv.Invitee != nil {
		invitee := toUserResponse(inv.Invitee)
		resp.Invitee = &invitee
	}
	return resp
}

func toJoinRequestResponse(req *models.JoinRequest) dto.JoinRequestResponse {
	resp := dto.JoinRequestResponse{
		ID:        req.ID,
		TeamID:    req.TeamID,
		Status:    req.Status,
		CreatedAt: req.CreatedAt.Format(time.RFC3339),
	}
	if req.Team != nil {
		team := toTeamResponse(req.Team, "")
		resp.Team = &team
	}
	if req.Requester != nil {
		requester := toUserResponse(req.Requester)
		resp.Requester = &requester
	}
	return resp
}

func toProjectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		TeamID:      p.TeamID,
		CreatorID:   p.CreatorID,
		Name:        p.Name,
		Description: p.Description,
	}
}

func toTaskResponse(t *models.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		CreatorID:   t.CreatorID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
	for i := range t.Assignees {
		resp.Assignees = append(resp.Assignees, toUserResponse(&t.Assignees[i]))
	}
	return resp
}

func toQuotaResponse(q *services.QuotaStatus) dto.QuotaResponse {
	return dto.QuotaResponse{Used: q.Used, Limit: q.Limit, Unlimited: q.Unlimited}
}
