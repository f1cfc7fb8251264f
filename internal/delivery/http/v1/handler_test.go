package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"gradhire-backend/internal/delivery/http/middleware"
	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.RegisterGinValidators()
	os.Exit(m.Run())
}

type MockJobUsecase struct {
	mock.Mock
}

func (m *MockJobUsecase) CreateJob(ctx context.Context, actor domain.Actor, input domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUsecase) UpdateJob(ctx context.Context, actor domain.Actor, jobID int64, input domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUsecase) PublishJob(ctx context.Context, actor domain.Actor, jobID int64) (*domain.Job, error) {
	args := m.Called(ctx, actor, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUsecase) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobUsecase) ListJobsByEmployer(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobUsecase) DeleteJob(ctx context.Context, actor domain.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockMessagingUsecase struct {
	mock.Mock
}

func (m *MockMessagingUsecase) CheckEligibility(ctx context.Context, actorID, counterpartID string, jobID *int64) (*domain.Eligibility, error) {
	args := m.Called(ctx, actorID, counterpartID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Eligibility), args.Error(1)
}

func (m *MockMessagingUsecase) SendMessage(ctx context.Context, actor domain.Actor, input domain.SendMessageInput) (*domain.Message, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessagingUsecase) ScheduleInterview(ctx context.Context, actor domain.Actor, input domain.ScheduleInterviewInput) (*domain.Message, *domain.Interview, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Message), args.Get(1).(*domain.Interview), args.Error(2)
}

func (m *MockMessagingUsecase) ListConversation(ctx context.Context, actor domain.Actor, counterpartID string) ([]domain.Message, error) {
	args := m.Called(ctx, actor, counterpartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// asUser stands in for AuthMiddleware.
func asUser(id, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(domain.KeyUserID), id)
		c.Set(string(domain.KeyUserRole), role)
		c.Next()
	}
}

func newTestRouter(auth gin.HandlerFunc, register func(*gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	v1 := r.Group("/v1", auth)
	register(v1)
	return r
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     struct {
		Kind    string   `json:"kind"`
		Code    string   `json:"code"`
		Details []string `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCreateJobUnverifiedEmployer(t *testing.T) {
	uc := new(MockJobUsecase)
	uc.On("CreateJob", mock.Anything, domain.Actor{ID: "emp-1", Role: domain.RoleEmployer}, mock.MatchedBy(func(in domain.JobInput) bool {
		return in.Status == domain.JobStatusPublished && len(in.SkillsRequired) == 2
	})).Return(nil, apperror.State(apperror.CodeEmployerNotVerified, "Employer must be verified to publish jobs"))
	r := newTestRouter(asUser("emp-1", domain.RoleEmployer), func(g *gin.RouterGroup) { NewJobHandler(g, uc) })

	w, env := do(t, r, http.MethodPost, "/v1/jobs", map[string]any{
		"title":           "Frontend Engineer",
		"description":     "Build the candidate dashboard",
		"location":        "Remote",
		"skills_required": []string{"React", "TypeScript"},
		"status":          "published",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "state", env.Error.Kind)
	assert.Equal(t, "EMPLOYER_NOT_VERIFIED", env.Error.Code)
	assert.NotEmpty(t, env.RequestID)
}

func TestCreateJobValidation(t *testing.T) {
	uc := new(MockJobUsecase)
	r := newTestRouter(asUser("emp-1", domain.RoleEmployer), func(g *gin.RouterGroup) { NewJobHandler(g, uc) })

	w, env := do(t, r, http.MethodPost, "/v1/jobs", map[string]any{
		"description": "No title",
		"location":    "Remote",
		"status":      "archived",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Error.Kind)
	assert.Len(t, env.Error.Details, 2)
	uc.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishJob(t *testing.T) {
	uc := new(MockJobUsecase)
	uc.On("PublishJob", mock.Anything, mock.Anything, int64(12)).
		Return(&domain.Job{ID: 12, Status: domain.JobStatusPublished, IsPublished: true}, nil)
	r := newTestRouter(asUser("emp-1", domain.RoleEmployer), func(g *gin.RouterGroup) { NewJobHandler(g, uc) })

	w, env := do(t, r, http.MethodPost, "/v1/jobs/12/publish", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var job domain.Job
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.True(t, job.IsPublished)

	w, _ = do(t, r, http.MethodPost, "/v1/jobs/abc/publish", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessageDenied(t *testing.T) {
	uc := new(MockMessagingUsecase)
	uc.On("SendMessage", mock.Anything, mock.Anything, domain.SendMessageInput{RecipientID: "emp-1", Body: "Hi"}).
		Return(nil, apperror.Authorization(apperror.CodeMessagingNotAllowed, domain.IneligibleStatusReason(domain.ApplicationStatusPending)))
	r := newTestRouter(asUser("js-1", domain.RoleJobseeker), func(g *gin.RouterGroup) { NewMessageHandler(g, uc, nil) })

	w, env := do(t, r, http.MethodPost, "/v1/messages", map[string]any{"recipient_id": "emp-1", "body": "Hi"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "MESSAGING_NOT_ALLOWED", env.Error.Code)
	assert.Contains(t, env.Message, "current status: pending")
}

func TestCheckEligibilityQuery(t *testing.T) {
	uc := new(MockMessagingUsecase)
	jobID := int64(5)
	uc.On("CheckEligibility", mock.Anything, "emp-1", "js-1", &jobID).
		Return(&domain.Eligibility{Eligible: true, ConversationID: domain.ConversationID("emp-1", "js-1")}, nil)
	r := newTestRouter(asUser("emp-1", domain.RoleEmployer), func(g *gin.RouterGroup) { NewMessageHandler(g, uc, nil) })

	w, env := do(t, r, http.MethodGet, "/v1/messages/eligibility/js-1?job_id=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var elig domain.Eligibility
	require.NoError(t, json.Unmarshal(env.Data, &elig))
	assert.True(t, elig.Eligible)
	assert.Equal(t, "emp-1_js-1", elig.ConversationID)

	w, _ = do(t, r, http.MethodGet, "/v1/messages/eligibility/js-1?job_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRouteRequiresAdmin(t *testing.T) {
	r := newTestRouter(asUser("emp-1", domain.RoleEmployer), func(g *gin.RouterGroup) { NewVerificationHandler(g, nil) })

	w, env := do(t, r, http.MethodPut, "/v1/admin/employers/emp-1/verification/government_id", map[string]string{"status": "approved"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "ROLE_NOT_ALLOWED", env.Error.Code)
}
