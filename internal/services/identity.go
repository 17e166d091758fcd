package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teamflow/teamflow-api/internal/database"
)

// IdentityService normalizes both credential shapes (provider-issued access
// token, locally-issued session cookie) to one canonical user identity.
type IdentityService struct {
	db  *database.DB
	jwt *JWTService
}

// Identity is the resolved caller. ReissuedSession is set only when a stale
// session credential was repaired; the transport layer must hand it back to
// the client so subsequent requests skip the repair path.
type Identity struct {
	UserID          uuid.UUID
	Email           string
	ReissuedSession string
}

func NewIdentityService(db *database.DB, jwt *JWTService) *IdentityService {
	return &IdentityService{db: db, jwt: jwt}
}

// ResolveBearer resolves a provider-issued access token.
func (s *IdentityService) ResolveBearer(token string) (*Identity, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil || claims.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// ResolveSession resolves a locally-issued session cookie. A token whose
// user_id claim is missing but whose email still resolves is repaired once:
// the identity is looked up by email and a corrected token is reissued.
// A nonzero user_id is authoritative as-is: the claim is integrity-protected
// by the HS256 signature, and the zero claim is the only inconsistent shape
// this issuer has ever produced.
// This is the only place the system silently repairs an inconsistent
// credential; any other failure is a hard ErrUnauthenticated.
func (s *IdentityService) ResolveSession(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.jwt.ValidateSessionToken(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if claims.UserID != uuid.Nil {
		return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
	}

	if claims.Email == "" {
		return nil, ErrUnauthenticated
	}

	return s.reconcileByEmail(ctx, claims.Email)
}

// reconcileByEmail is the idempotent self-heal: the email claim is the
// durable key, the stored user row is the source of truth.
func (s *IdentityService) reconcileByEmail(ctx context.Context, email string) (*Identity, error) {
	var userID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id FROM users WHERE email = $1
	`, email).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to reconcile identity: %w", err)
	}

	reissued, err := s.jwt.GenerateSessionToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to reissue session: %w", err)
	}

	return &Identity{UserID: userID, Email: email, ReissuedSession: reissued}, nil
}
