package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/oauth"
	"github.com/teamflow/teamflow-api/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string, available *bool) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name, visibility string, ownerID uuid.UUID) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []string, error)
	Update(ctx context.Context, teamID uuid.UUID, name, visibility string) (*models.Team, error)
	Delete(ctx context.Context, teamID uuid.UUID) error
}

// MembershipServiceInterface defines the methods used by handlers from MembershipService
type MembershipServiceInterface interface {
	GetRole(ctx context.Context, teamID, userID uuid.UUID) (string, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	ChangeRole(ctx context.Context, teamID, userID uuid.UUID, role string) error
	TransferOwnership(ctx context.Context, teamID, ownerID, targetID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	Create(ctx context.Context, teamID, inviterID, inviteeID uuid.UUID, message string) (*models.Invitation, error)
	GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error)
	GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.Invitation, error)
	GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.Invitation, error)
	Accept(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error)
	Reject(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error)
	Cancel(ctx context.Context, invitationID, teamID uuid.UUID) error
}

// JoinRequestServiceInterface defines the methods used by handlers from JoinRequestService
type JoinRequestServiceInterface interface {
	Create(ctx context.Context, teamID, requesterID uuid.UUID) (*services.JoinResult, error)
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error)
	GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.JoinRequest, error)
	GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error)
	Approve(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error)
	Reject(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error)
	Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error
}

// QuotaServiceInterface defines the methods used by handlers from QuotaService
type QuotaServiceInterface interface {
	TeamMembers(ctx context.Context, teamID uuid.UUID) (*services.QuotaStatus, error)
	DailyUsage(ctx context.Context, userID uuid.UUID) (*services.QuotaStatus, error)
	ConsumeDailyUsage(ctx context.Context, userID uuid.UUID) (*services.QuotaStatus, error)
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	Emit(ctx context.Context, recipientID uuid.UUID, notifType, title, message string, relatedID *uuid.UUID)
	GetUserNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	GenerateSessionToken(userID uuid.UUID, email string) (string, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	SendTeamInvitation(to, teamName, inviterName, message string) error
}
