package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/oauth"
	"github.com/teamflow/teamflow-api/internal/services"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string, available *bool) (*models.User, error) {
	args := m.Called(ctx, id, name, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) Create(ctx context.Context, name, visibility string, ownerID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, name, visibility, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, []string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Team), args.Get(1).([]string), args.Error(2)
}

func (m *MockTeamService) Update(ctx context.Context, teamID uuid.UUID, name, visibility string) (*models.Team, error) {
	args := m.Called(ctx, teamID, name, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Delete(ctx context.Context, teamID uuid.UUID) error {
	args := m.Called(ctx, teamID)
	return args.Error(0)
}

// MockMembershipService mocks the MembershipService
type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) GetRole(ctx context.Context, teamID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, teamID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockMembershipService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, teamID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockMembershipService) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockMembershipService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

func (m *MockMembershipService) ChangeRole(ctx context.Context, teamID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, teamID, userID, role)
	return args.Error(0)
}

func (m *MockMembershipService) TransferOwnership(ctx context.Context, teamID, ownerID, targetID uuid.UUID) error {
	args := m.Called(ctx, teamID, ownerID, targetID)
	return args.Error(0)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Create(ctx context.Context, teamID, inviterID, inviteeID uuid.UUID, message string) (*models.Invitation, error) {
	args := m.Called(ctx, teamID, inviterID, inviteeID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	args := m.Called(ctx, invitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error) {
	args := m.Called(ctx, invitationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Reject(ctx context.Context, invitationID, userID uuid.UUID) (*models.Invitation, error) {
	args := m.Called(ctx, invitationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationService) Cancel(ctx context.Context, invitationID, teamID uuid.UUID) error {
	args := m.Called(ctx, invitationID, teamID)
	return args.Error(0)
}

// MockJoinRequestService mocks the JoinRequestService
type MockJoinRequestService struct {
	mock.Mock
}

func (m *MockJoinRequestService) Create(ctx context.Context, teamID, requesterID uuid.UUID) (*services.JoinResult, error) {
	args := m.Called(ctx, teamID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JoinResult), args.Error(1)
}

func (m *MockJoinRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestService) GetUserPending(ctx context.Context, userID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestService) GetTeamPending(ctx context.Context, teamID uuid.UUID) ([]models.JoinRequest, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestService) Approve(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, requestID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestService) Reject(ctx context.Context, requestID, teamID uuid.UUID) (*models.JoinRequest, error) {
	args := m.Called(ctx, requestID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestService) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) error {
	args := m.Called(ctx, requestID, requesterID)
	return args.Error(0)
}

// MockQuotaService mocks the QuotaService
type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) TeamMembers(ctx context.Context, teamID uuid.UUID) (*services.QuotaStatus, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) DailyUsage(ctx context.Context, userID uuid.UUID) (*services.QuotaStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) ConsumeDailyUsage(ctx context.Context, userID uuid.UUID) (*services.QuotaStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.QuotaStatus), args.Error(1)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Emit(ctx context.Context, recipientID uuid.UUID, notifType, title, message string, relatedID *uuid.UUID) {
	m.Called(ctx, recipientID, notifType, title, message, relatedID)
}

func (m *MockNotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendTeamInvitation(to, teamName, inviterName, message string) error {
	args := m.Called(to, teamName, inviterName, message)
	return args.Error(0)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
