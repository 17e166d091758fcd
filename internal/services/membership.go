package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/policy"
)

// MembershipService is the single source of truth for (team, user, role)
// rows. Role decisions are never cached across requests.
type MembershipService struct {
	db *database.DB
}

func NewMembershipService(db *database.DB) *MembershipService {
	return &MembershipService{db: db}
}

// GetRole returns the caller's role in the team, or "" when no membership
// row exists. "" denies every action under the policy table.
func (s *MembershipService) GetRole(ctx context.Context, teamID, userID uuid.UUID) (string, error) {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return role, nil
}

func (s *MembershipService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *MembershipService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.plan, u.available, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider,
			&user.Plan, &user.Available, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}

func (s *MembershipService) MemberCount(ctx context.Context, teamID uuid.UUID) (int, error) {
	var count int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM team_members WHERE team_id = $1
	`, teamID).Scan(&count)
	return count, err
}

// AddMember inserts a quota-guarded member row in its own transaction.
func (s *MembershipService) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.AddMemberInTx(ctx, tx, teamID, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AddMemberInTx performs the system's one required atomic region: the team
// row is locked, the owner's plan read, and the member row inserted by a
// single conditional statement that re-counts under the lock. Concurrent
// adds against the same team serialize on the row lock, so two approvals at
// limit-1 cannot both pass a stale count.
func (s *MembershipService) AddMemberInTx(ctx context.Context, tx pgx.Tx, teamID, userID uuid.UUID) error {
	var plan models.Plan
	err := tx.QueryRow(ctx, `
		SELECT u.plan FROM teams t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, teamID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to lock team: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if exists {
		return ErrAlreadyMember
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		SELECT $1, $2, $3
		WHERE $4 = 0 OR (SELECT COUNT(*) FROM team_members WHERE team_id = $1) < $4
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, models.RoleMember, plan.MemberLimit())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// RemoveMember covers self-leave and admin-remove. The owner row is never
// removable; ownership must be transferred or the team deleted.
func (s *MembershipService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&role)
	if err != nil {
		return ErrMemberNotFound
	}

	if role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}

// ChangeRole moves a member between member and admin. The owner role is
// never assigned or revoked here; TransferOwnership is the only path that
// touches it, so exactly one owner row survives any sequence of calls.
func (s *MembershipService) ChangeRole(ctx context.Context, teamID, userID uuid.UUID, role string) error {
	if !policy.AssignableRole(role) {
		return ErrInvalidRole
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2 FOR UPDATE
	`, teamID, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to read membership: %w", err)
	}
	if current == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	_, err = tx.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3
	`, role, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to change role: %w", err)
	}

	return tx.Commit(ctx)
}

// TransferOwnership atomically swaps the owner: the current owner becomes an
// admin and the target (an existing member) becomes the owner, in the same
// transaction that updates the team's owner reference.
func (s *MembershipService) TransferOwnership(ctx context.Context, teamID, ownerID, targetID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var targetRole string
	err = tx.QueryRow(ctx, `
		SELECT role FROM team_members WHERE team_id = $1 AND user_id = $2 FOR UPDATE
	`, teamID, targetID).Scan(&targetRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to read target membership: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE teams SET owner_id = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
	`, targetID, teamID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update team owner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotAuthorized
	}

	_, err = tx.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3
	`, models.RoleAdmin, teamID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to demote previous owner: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3
	`, models.RoleOwner, teamID, targetID)
	if err != nil {
		return fmt.Errorf("failed to promote new owner: %w", err)
	}

	return tx.Commit(ctx)
}
