package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teamflow/teamflow-api/internal/models"
	"github.com/teamflow/teamflow-api/internal/services"
	"github.com/teamflow/teamflow-api/pkg/dto"
	"github.com/teamflow/teamflow-api/tests/testutil"
)

type joinRequestTestEnv struct {
	joinRequests  *testutil.MockJoinRequestService
	memberships   *testutil.MockMembershipService
	teams         *testutil.MockTeamService
	users         *testutil.MockUserService
	notifications *testutil.MockNotificationService
	handler       *JoinRequestHandler
	jwtSvc        *services.JWTService
}

func setupJoinRequestTest(t *testing.T) *joinRequestTestEnv {
	t.Helper()
	env := &joinRequestTestEnv{
		joinRequests:  new(testutil.MockJoinRequestService),
		memberships:   new(testutil.MockMembershipService),
		teams:         new(testutil.MockTeamService),
		users:         new(testutil.MockUserService),
		notifications: new(testutil.MockNotificationService),
		jwtSvc:        services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour),
	}
	env.handler = NewJoinRequestHandler(
		env.joinRequests, env.memberships, env.teams, env.users, env.notifications,
	)
	return env
}

// Joining a public team succeeds immediately with no pending request.
func TestJoinRequestHandler_Create_PublicTeam(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.joinRequests.On("Create", mock.Anything, teamID, userID).
		Return(&services.JoinResult{Joined: true}, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join", env.handler.Create)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodPost, "/teams/"+teamID.String()+"/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.JoinResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.True(t, response.Joined)
	assert.Nil(t, response.Request)

	env.joinRequests.AssertExpectations(t)
}

// Joining a private team creates a pending request and notifies managers.
func TestJoinRequestHandler_Create_PrivateTeam(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	ownerID := uuid.New()
	request := &models.JoinRequest{
		ID:          uuid.New(),
		TeamID:      teamID,
		RequesterID: userID,
		Status:      models.JoinRequestStatusPending,
		CreatedAt:   time.Now(),
	}
	requester := &models.User{ID: userID, Name: "Requester", Email: "user@example.com"}
	members := []models.TeamMember{
		{TeamID: teamID, UserID: ownerID, Role: models.RoleOwner},
		{TeamID: teamID, UserID: uuid.New(), Role: models.RoleMember},
	}

	env.joinRequests.On("Create", mock.Anything, teamID, userID).
		Return(&services.JoinResult{Joined: false, Request: request}, nil)
	env.users.On("GetByID", mock.Anything, userID).Return(requester, nil)
	env.memberships.On("GetMembers", mock.Anything, teamID).Return(members, nil)
	env.notifications.On("Emit", mock.Anything, ownerID, models.NotificationJoinRequestCreated,
		"Join request", mock.AnythingOfType("string"), mock.Anything).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join", env.handler.Create)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodPost, "/teams/"+teamID.String()+"/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.JoinResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.False(t, response.Joined)
	require.NotNil(t, response.Request)
	assert.Equal(t, request.ID, response.Request.ID)

	env.joinRequests.AssertExpectations(t)
	env.notifications.AssertExpectations(t)
}

func TestJoinRequestHandler_Create_AlreadyMember(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.joinRequests.On("Create", mock.Anything, teamID, userID).Return(nil, services.ErrAlreadyMember)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join", env.handler.Create)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodPost, "/teams/"+teamID.String()+"/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already a team member")

	env.joinRequests.AssertExpectations(t)
}

// Joining a full public team surfaces the member limit as a conflict.
func TestJoinRequestHandler_Create_QuotaExceeded(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()

	env.joinRequests.On("Create", mock.Anything, teamID, userID).Return(nil, services.ErrQuotaExceeded)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join", env.handler.Create)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodPost, "/teams/"+teamID.String()+"/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "team member limit reached")

	env.joinRequests.AssertExpectations(t)
}

func TestJoinRequestHandler_Approve_Success(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	requesterID := uuid.New()
	request := &models.JoinRequest{
		ID:          uuid.New(),
		TeamID:      teamID,
		RequesterID: requesterID,
		Status:      models.JoinRequestStatusApproved,
		CreatedAt:   time.Now(),
	}

	env.memberships.On("GetRole", mock.Anything, teamID, userID).Return(models.RoleAdmin, nil)
	env.joinRequests.On("Approve", mock.Anything, request.ID, teamID).Return(request, nil)
	env.notifications.On("Emit", mock.Anything, requesterID, models.NotificationRequestApproved,
		"Request approved", mock.AnythingOfType("string"), mock.Anything).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join-requests/:requestId/approve", env.handler.Approve)

	token := generateTestToken(t, env.jwtSvc, userID, "admin@example.com")
	req := httptest.NewRequest(http.MethodPost,
		"/teams/"+teamID.String()+"/join-requests/"+request.ID.String()+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.JoinRequestResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestStatusApproved, response.Status)

	env.joinRequests.AssertExpectations(t)
	env.notifications.AssertExpectations(t)
}

func TestJoinRequestHandler_Approve_AsMember(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	requestID := uuid.New()

	env.memberships.On("GetRole", mock.Anything, teamID, userID).Return(models.RoleMember, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join-requests/:requestId/approve", env.handler.Approve)

	token := generateTestToken(t, env.jwtSvc, userID, "member@example.com")
	req := httptest.NewRequest(http.MethodPost,
		"/teams/"+teamID.String()+"/join-requests/"+requestID.String()+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authorized")

	env.memberships.AssertExpectations(t)
}

func TestJoinRequestHandler_Reject_Success(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	requesterID := uuid.New()
	request := &models.JoinRequest{
		ID:          uuid.New(),
		TeamID:      teamID,
		RequesterID: requesterID,
		Status:      models.JoinRequestStatusRejected,
		CreatedAt:   time.Now(),
	}

	env.memberships.On("GetRole", mock.Anything, teamID, userID).Return(models.RoleOwner, nil)
	env.joinRequests.On("Reject", mock.Anything, request.ID, teamID).Return(request, nil)
	env.notifications.On("Emit", mock.Anything, requesterID, models.NotificationRequestRejected,
		"Request declined", mock.AnythingOfType("string"), mock.Anything).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Post("/teams/:id/join-requests/:requestId/reject", env.handler.Reject)

	token := generateTestToken(t, env.jwtSvc, userID, "owner@example.com")
	req := httptest.NewRequest(http.MethodPost,
		"/teams/"+teamID.String()+"/join-requests/"+request.ID.String()+"/reject", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.JoinRequestResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestStatusRejected, response.Status)

	env.joinRequests.AssertExpectations(t)
	env.notifications.AssertExpectations(t)
}

func TestJoinRequestHandler_Cancel_Success(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	requestID := uuid.New()

	env.joinRequests.On("Cancel", mock.Anything, requestID, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Delete("/join-requests/:id", env.handler.Cancel)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodDelete, "/join-requests/"+requestID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "request withdrawn")

	env.joinRequests.AssertExpectations(t)
}

func TestJoinRequestHandler_Cancel_NotFound(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	requestID := uuid.New()

	env.joinRequests.On("Cancel", mock.Anything, requestID, userID).Return(services.ErrRequestNotFound)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Delete("/join-requests/:id", env.handler.Cancel)

	token := generateTestToken(t, env.jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodDelete, "/join-requests/"+requestID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "join request not found")

	env.joinRequests.AssertExpectations(t)
}

func TestJoinRequestHandler_ListForTeam_Success(t *testing.T) {
	env := setupJoinRequestTest(t)

	userID := uuid.New()
	teamID := uuid.New()
	requests := []models.JoinRequest{
		{
			ID:          uuid.New(),
			TeamID:      teamID,
			RequesterID: uuid.New(),
			Status:      models.JoinRequestStatusPending,
			CreatedAt:   time.Now(),
			Requester:   &models.User{ID: uuid.New(), Name: "Requester", Email: "req@example.com"},
		},
	}

	env.memberships.On("GetRole", mock.Anything, teamID, userID).Return(models.RoleAdmin, nil)
	env.joinRequests.On("GetTeamPending", mock.Anything, teamID).Return(requests, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(newTestAuth(t, env.jwtSvc))
	app.Get("/teams/:id/join-requests", env.handler.ListForTeam)

	token := generateTestToken(t, env.jwtSvc, userID, "admin@example.com")
	req := httptest.NewRequest(http.MethodGet, "/teams/"+teamID.String()+"/join-requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.JoinRequestResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Len(t, response, 1)
	assert.NotNil(t, response[0].Requester)

	env.joinRequests.AssertExpectations(t)
	env.memberships.AssertExpectations(t)
}
