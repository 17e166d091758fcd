package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

// JoinRequestService drives the user-initiated membership workflow. Public
// teams are joined immediately; private teams queue a pending request for
// an owner or admin to approve.
type JoinRequestService struct {
	db          *database.DB
	teams       *TeamService
	memberships *MembershipService
}

func NewJoinRequestService(db *database.DB, teams *TeamService, memberships *MembershipService) *JoinRequestService {
	return &JoinRequestService{db: db, teams: teams, memberships: memberships}
}

const joinRequestColumns = `id, team_id, requester_id, status, created_at, updated_at`

func scanJoinRequest(row pgx.Row) (*models.JoinRequest, error) {
	var req models.JoinRequest
	err := row.Scan(&req.ID, &req.TeamID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// JoinResult is the outcome of Create: for a public team Joined is true and
// Request is nil, for a private team a pending request is returned.
type JoinResult struct {
	Joined  bool
	Request *models.JoinRequest
}

// Create either joins the requester to a public team outright or records a
// pending request for a private one. The quota guard applies in both paths,
// at join time for public teams and at approval time for private ones.
func (s *JoinRequestService) Create(ctx context.Context, teamID, requesterID uuid.UUID) (*JoinResult, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.memberships.IsMember(ctx, teamID, requesterID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	if team.Visibility == models.VisibilityPublic {
		if err := s.memberships.AddMember(ctx, teamID, requesterID); err != nil {
			return nil, err
		}
		return &JoinResult{Joined: true}, nil
	}

	req, err := scanJoinRequest(s.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (team_id, requester_id)
		VALUES ($1, $2)
		RETURNING `+joinRequestColumns+`
	`, teamID, requesterID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return &JoinResult{Request: req}, nil
}

func (s *JoinRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	req, err := scanJoinRequest(s.db.Pool.QueryRow(ctx, `
		SELECT `+joinRequestColumns+` FROM join_requests WHERE id = $1
	`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *JoinRequestService) GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT r.id, r.team_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       t.id, t.name, t.visibility, t.owner_id, t.created_at, t.updated_at
		FROM join_requests r
		JOIN teams t ON r.team_id = t.id
		WHERE r.requester_id = $1 AND r.status = $2
		ORDER BY r.created_at DESC
	`, userID, models.JoinRequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		var team models.Team
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&team.ID, &team.Name, &team.Visibility, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Team = &team
		requests = append(requests, req)
	}
	return requests, nil
}

func (s *JoinRequestService) GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT r.id, r.team_id, r.requester_id, r.status, r.created_at, r.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM join_requests r
		JOIN users u ON r.requester_id = u.id
		WHERE r.team_id = $1 AND r.status = $2
		ORDER BY r.created_at DESC
	`, teamID, models.JoinRequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var req models.JoinRequest
		var requester models.User
		if err := rows.Scan(
			&req.ID, &req.TeamID, &req.RequesterID, &req.Status, &req.CreatedAt, &req.UpdatedAt,
			&requester.ID, &requester.Email, &requester.Name, &requester.AvatarURL, &requester.Provider,
			&requester.Plan, &requester.Available, &requester.CreatedAt, &requester.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Requester = &requester
		requests = append(requests, req)
	}
	return requests, nil
}

// Approve mirrors invitation acceptance: lock, require pending, quota-guarded
// insert, flip status, all in one transaction. A quota failure rolls back and
// leaves the request pending for a later retry.
func (s *JoinRequestService) Approve(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := scanJoinRequest(tx.QueryRow(ctx, `
		SELECT `+joinRequestColumns+` FROM join_requests WHERE id = $1 FOR UPDATE
	`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load join request: %w", err)
	}

	if req.TeamID != teamID {
		return nil, ErrRequestNotFound
	}
	if req.Status != models.JoinRequestStatusPending {
		return nil, ErrNotPending
	}

	if err := s.memberships.AddMemberInTx(ctx, tx, req.TeamID, req.RequesterID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE join_requests SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.JoinRequestStatusApproved, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to update join request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	req.Status = models.JoinRequestStatusApproved
	return req, nil
}

// Reject flips a pending request to rejected. The rejected row stays around
// so the team's decision history survives.
func (s *JoinRequestService) Reject(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error) {
	req, err := scanJoinRequest(s.db.Pool.QueryRow(ctx, `
		UPDATE join_requests SET status = $1, updated_at = NOW()
		WHERE id = $2 AND team_id = $3 AND status = $4
		RETURNING `+joinRequestColumns+`
	`, models.JoinRequestStatusRejected, requestID, teamID, models.JoinRequestStatusPending))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	existing, getErr := s.GetByID(ctx, requestID)
	if getErr != nil || existing.TeamID != teamID {
		return nil, ErrRequestNotFound
	}
	return nil, ErrNotPending
}

// Cancel lets the requester withdraw a pending request. The row is deleted,
// not flipped, so a withdrawn request leaves no history.
func (s *JoinRequestService) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM join_requests WHERE id = $1 AND requester_id = $2 AND status = $3
	`, requestID, requesterID, models.JoinRequestStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ExpireStale drops pending requests older than ttl.
func (s *JoinRequestService) ExpireStale(ctx context.Context, ttl time.Duration) error {
	_, err := s.db.Pool.Exec(ctx, `
		DELETE FROM join_requests
		WHERE status = $1 AND created_at < NOW() - $2::interval
	`, models.JoinRequestStatusPending, ttl.String())
	return err
}
