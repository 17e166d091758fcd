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

// InvitationService drives the owner/admin-initiated membership workflow:
// pending -> accepted | rejected, both terminal. Terminal rows are retained
// as history and never reopened.
type InvitationService struct {
	db          *database.DB
	memberships *MembershipService
}

func NewInvitationService(db *database.DB, memberships *MembershipService) *InvitationService {
	return &InvitationService{db: db, memberships: memberships}
}

const invitationColumns = `id, team_id, inviter_id, invitee_id, message, status, created_at, updated_at`

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID,
		&inv.Message, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create requires the caller to hold manage_members (checked by the
// handler). Fails with ErrAlreadyMember for existing members and
// ErrDuplicatePending when a pending invitation already exists; the latter
// is enforced by the partial unique index, not a prior read.
func (s *InvitationService) Create(ctx context.Context, teamID, inviterID, inviteeID uuid.UUID, message string) (*models.Invitation, error) {
	isMember, err := s.memberships.IsMember(ctx, teamID, inviteeID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	inv, err := scanInvitation(s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_invitations (team_id, inviter_id, invitee_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+invitationColumns+`
	`, teamID, inviterID, inviteeID, message))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

func (s *InvitationService) GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	inv, err := scanInvitation(s.db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations WHERE id = $1
	`, invitationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *InvitationService) GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.team_id, i.inviter_id, i.invitee_id, i.message, i.status, i.created_at, i.updated_at,
		       t.id, t.name, t.visibility, t.owner_id, t.created_at, t.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM team_invitations i
		JOIN teams t ON i.team_id = t.id
		JOIN users u ON i.inviter_id = u.id
		WHERE i.invitee_id = $1 AND i.status = $2
		ORDER BY i.created_at DESC
	`, userID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var team models.Team
		var inviter models.User
		if err := rows.Scan(
			&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			&team.ID, &team.Name, &team.Visibility, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
			&inviter.ID, &inviter.Email, &inviter.Name, &inviter.AvatarURL, &inviter.Provider,
			&inviter.Plan, &inviter.Available, &inviter.CreatedAt, &inviter.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inv.Team = &team
		inv.Inviter = &inviter
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

func (s *InvitationService) GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.team_id, i.inviter_id, i.invitee_id, i.message, i.status, i.created_at, i.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM team_invitations i
		JOIN users u ON i.invitee_id = u.id
		WHERE i.team_id = $1 AND i.status = $2
		ORDER BY i.created_at DESC
	`, teamID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var invitee models.User
		if err := rows.Scan(
			&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			&invitee.ID, &invitee.Email, &invitee.Name, &invitee.AvatarURL, &invitee.Provider,
			&invitee.Plan, &invitee.Available, &invitee.CreatedAt, &invitee.UpdatedAt,
		); err != nil {
			return nil, err
		}
		inv.Invitee = &invitee
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

// Accept runs as one transaction: lock the row, require pending, insert the
// quota-guarded membership, flip the status. On ErrAlreadyMember or
// ErrQuotaExceeded everything rolls back and the invitation stays pending.
func (s *InvitationService) Accept(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := scanInvitation(tx.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations WHERE id = $1 FOR UPDATE
	`, invitationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to load invitation: %w", err)
	}

	if inv.InviteeID != userID {
		return nil, ErrInvitationNotFound
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, ErrNotPending
	}

	if err := s.memberships.AddMemberInTx(ctx, tx, inv.TeamID, userID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE team_invitations SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.InvitationStatusAccepted, invitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	inv.Status = models.InvitationStatusAccepted
	return inv, nil
}

// Reject flips a pending invitation to rejected. Only the invitee may call;
// re-rejecting a terminal row is a Conflict, not a silent success.
func (s *InvitationService) Reject(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error) {
	inv, err := scanInvitation(s.db.Pool.QueryRow(ctx, `
		UPDATE team_invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND invitee_id = $3 AND status = $4
		RETURNING `+invitationColumns+`
	`, models.InvitationStatusRejected, invitationID, userID, models.InvitationStatusPending))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Distinguish a missing row from an already-processed one.
	existing, getErr := s.GetByID(ctx, invitationID)
	if getErr != nil || existing.InviteeID != userID {
		return nil, ErrInvitationNotFound
	}
	return nil, ErrNotPending
}

// Cancel removes a pending invitation outright. Caller authorization
// (owner/admin of the team) is the handler's concern.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, teamID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_invitations WHERE id = $1 AND team_id = $2 AND status = $3
	`, invitationID, teamID, models.InvitationStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// ExpireStale drops pending invitations older than ttl. Deleting rather
// than flipping lets the pair be re-invited later.
func (s *InvitationService) ExpireStale(ctx context.Context, ttl time.Duration) error {
	_, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_invitations
		WHERE status = $1 AND created_at < NOW() - $2::interval
	`, models.InvitationStatusPending, ttl.String())
	return err
}
