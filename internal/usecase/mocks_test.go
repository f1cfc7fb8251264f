package usecase_test

import (
	"context"
	"time"

	"gradhire-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) FetchByEmployerID(ctx context.Context, employerID string) ([]domain.Job, error) {
	args := m.Called(ctx, employerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByJobID(ctx context.Context, jobID int64) ([]domain.Application, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) GetByJobseekerID(ctx context.Context, jobseekerID string) ([]domain.Application, error) {
	args := m.Called(ctx, jobseekerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) ListBetween(ctx context.Context, userA, userB string, jobID *int64) ([]domain.Application, error) {
	args := m.Called(ctx, userA, userB, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) UpdateReview(ctx context.Context, id int64, review domain.StatusReview) error {
	return m.Called(ctx, id, review).Error(0)
}

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetJobseeker(ctx context.Context, userID string) (*domain.JobseekerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobseekerProfile), args.Error(1)
}

func (m *MockProfileStore) GetEmployer(ctx context.Context, userID string) (*domain.EmployerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployerProfile), args.Error(1)
}

func (m *MockProfileStore) ListActiveJobseekersWithSkills(ctx context.Context, afterID string, limit int) ([]domain.JobseekerProfile, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobseekerProfile), args.Error(1)
}

type MockVerificationStore struct {
	mock.Mock
}

func (m *MockVerificationStore) GetByEmployerID(ctx context.Context, employerID string) (*domain.EmployerVerification, error) {
	args := m.Called(ctx, employerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployerVerification), args.Error(1)
}

func (m *MockVerificationStore) SetDocumentStatus(ctx context.Context, employerID string, slot domain.DocumentSlot, status domain.DocumentStatus) (*domain.EmployerVerification, error) {
	args := m.Called(ctx, employerID, slot, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployerVerification), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) ExistsSince(ctx context.Context, userID string, typ domain.NotificationType, related domain.RelatedRef, since time.Time) (bool, error) {
	args := m.Called(ctx, userID, typ, related, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepo) FindUnreadFromActor(ctx context.Context, userID, actorID string, typ domain.NotificationType, since time.Time) (*domain.Notification, error) {
	args := m.Called(ctx, userID, actorID, typ, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) UpdateContent(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, userID string, id int64, at time.Time) error {
	return m.Called(ctx, userID, id, at).Error(0)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, userID string, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNotificationRepo) ArchiveAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepo) CreateInterview(ctx context.Context, msg *domain.Message, interview *domain.Interview) error {
	return m.Called(ctx, msg, interview).Error(0)
}

func (m *MockMessageRepo) ListByConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// Mock collaborators

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJobPublished(ctx context.Context, e domain.JobPublished) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPublisher) PublishApplicationStatusChanged(ctx context.Context, e domain.ApplicationStatusChanged) error {
	return m.Called(ctx, e).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n *domain.Notification) (domain.NotifyOutcome, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(domain.NotifyOutcome), args.Error(1)
}

// Fixtures

func verifiedDocs() domain.VerificationDocs {
	return domain.VerificationDocs{
		Registration: domain.DocumentApproved,
		GovernmentID: domain.DocumentApproved,
		Address:      domain.DocumentApproved,
	}
}

func verification(employerID string, docs domain.VerificationDocs) *domain.EmployerVerification {
	return &domain.EmployerVerification{
		EmployerID:    employerID,
		Docs:          docs,
		OverallStatus: domain.DeriveOverallStatus(docs),
	}
}

func publishedJob(id int64, employerID string, skills ...string) *domain.Job {
	now := time.Now()
	return &domain.Job{
		ID:             id,
		EmployerID:     employerID,
		Title:          "Frontend Engineer",
		CompanyName:    "Acme",
		SkillsRequired: skills,
		Status:         domain.JobStatusPublished,
		IsPublished:    true,
		IsActive:       true,
		PublishedAt:    &now,
	}
}

var (
	employer  = domain.Actor{ID: "emp-1", Role: domain.RoleEmployer}
	jobseeker = domain.Actor{ID: "js-1", Role: domain.RoleJobseeker}
)
