package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/models"
)

// QuotaService reports and enforces plan-derived limits. Team limits come
// from the owner's plan, usage limits from the caller's own plan.
type QuotaService struct {
	db *database.DB
}

func NewQuotaService(db *database.DB) *QuotaService {
	return &QuotaService{db: db}
}

// QuotaStatus is a point-in-time reading. Unlimited means no limit applies
// and Limit is meaningless.
type QuotaStatus struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
}

// TeamMembers reads the team's member count against the owner plan's limit.
// Advisory only; enforcement happens inside the membership insert.
func (s *QuotaService) TeamMembers(ctx context.Context, teamID uuid.UUID) (*QuotaStatus, error) {
	var plan models.Plan
	var used int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT u.plan, (SELECT COUNT(*) FROM team_members WHERE team_id = t.id)
		FROM teams t
		JOIN users u ON u.id = t.owner_id
		WHERE t.id = $1
	`, teamID).Scan(&plan, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	limit := plan.MemberLimit()
	return &QuotaStatus{Used: used, Limit: limit, Unlimited: limit == models.Unbounded}, nil
}

// DailyUsage reads the caller's usage counter for the current day.
func (s *QuotaService) DailyUsage(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	var plan models.Plan
	err := s.db.Pool.QueryRow(ctx, `
		SELECT plan FROM users WHERE id = $1
	`, userID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var used int
	err = s.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(count, 0) FROM ai_usage WHERE user_id = $1 AND day = CURRENT_DATE
	`, userID).Scan(&used)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		used = 0
	}

	limit := plan.DailyUsageLimit()
	return &QuotaStatus{Used: used, Limit: limit, Unlimited: limit == models.Unbounded}, nil
}

// ConsumeDailyUsage reserves one unit of today's allowance. The upsert only
// increments while the counter is below the limit, so concurrent reservations
// at limit-1 race on the row and exactly one wins.
func (s *QuotaService) ConsumeDailyUsage(ctx context.Context, userID uuid.UUID) (*QuotaStatus, error) {
	var plan models.Plan
	err := s.db.Pool.QueryRow(ctx, `
		SELECT plan FROM users WHERE id = $1
	`, userID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	limit := plan.DailyUsageLimit()
	var used int
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO ai_usage (user_id, day, count)
		VALUES ($1, CURRENT_DATE, 1)
		ON CONFLICT (user_id, day) DO UPDATE
		SET count = ai_usage.count + 1
		WHERE $2 = 0 OR ai_usage.count < $2
		RETURNING count
	`, userID, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUsageExceeded
		}
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	return &QuotaStatus{Used: used, Limit: limit, Unlimited: limit == models.Unbounded}, nil
}
