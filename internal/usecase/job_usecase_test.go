package usecase_test

import (
	"context"
	"errors"
	"testing"

	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/usecase"
	"gradhire-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type jobFixture struct {
	jobs          *MockJobRepo
	profiles      *MockProfileStore
	verifications *MockVerificationStore
	publisher     *MockPublisher
	uc            domain.JobUsecase
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		jobs:          new(MockJobRepo),
		profiles:      new(MockProfileStore),
		verifications: new(MockVerificationStore),
		publisher:     new(MockPublisher),
	}
	f.uc = usecase.NewJobUsecase(f.jobs, f.profiles, f.verifications, f.publisher, nil)
	f.profiles.On("GetEmployer", mock.Anything, employer.ID).
		Return(&domain.EmployerProfile{UserID: employer.ID, CompanyName: "Acme"}, nil).Maybe()
	return f
}

func (f *jobFixture) expectCreate() {
	f.jobs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Job")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Job).ID = 42 }).
		Return(nil)
}

func TestPublicationGate(t *testing.T) {
	unverified := []domain.VerificationDocs{
		{},
		{Registration: domain.DocumentApproved, GovernmentID: domain.DocumentApproved, Address: domain.DocumentPending},
		{Registration: domain.DocumentApproved, GovernmentID: domain.DocumentRejected, Address: domain.DocumentApproved},
		{Registration: domain.DocumentSubmitted},
	}

	for _, docs := range unverified {
		t.Run("publish fails while "+string(domain.DeriveOverallStatus(docs)), func(t *testing.T) {
			f := newJobFixture()
			f.verifications.On("GetByEmployerID", mock.Anything, employer.ID).Return(verification(employer.ID, docs), nil)

			_, err := f.uc.CreateJob(context.Background(), employer, domain.JobInput{
				Title:  "Backend Engineer",
				Status: domain.JobStatusPublished,
			})

			require.Error(t, err)
			assert.Equal(t, apperror.CodeEmployerNotVerified, apperror.ReasonOf(err))
			assert.True(t, apperror.IsKind(err, apperror.KindState))
			f.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.publisher.AssertNotCalled(t, "PublishJobPublished", mock.Anything, mock.Anything)
		})

		t.Run("draft succeeds while "+string(domain.DeriveOverallStatus(docs)), func(t *testing.T) {
			f := newJobFixture()
			f.expectCreate()

			job, err := f.uc.CreateJob(context.Background(), employer, domain.JobInput{
				Title:  "Backend Engineer",
				Status: domain.JobStatusDraft,
			})

			require.NoError(t, err)
			assert.Equal(t, domain.JobStatusDraft, job.Status)
			assert.False(t, job.IsPublished)
			assert.Equal(t, "Acme", job.CompanyName)
			f.verifications.AssertNotCalled(t, "GetByEmployerID", mock.Anything, mock.Anything)
			f.publisher.AssertNotCalled(t, "PublishJobPublished", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateJobPublishedFiresOnce(t *testing.T) {
	f := newJobFixture()
	f.expectCreate()
	f.verifications.On("GetByEmployerID", mock.Anything, employer.ID).Return(verification(employer.ID, verifiedDocs()), nil)
	f.publisher.On("PublishJobPublished", mock.Anything, mock.MatchedBy(func(e domain.JobPublished) bool {
		return e.JobID == 42 && e.EmployerID == employer.ID && e.EventID != ""
	})).Return(nil).Once()

	job, err := f.uc.CreateJob(context.Background(), employer, domain.JobInput{
		Title:          "Frontend Engineer",
		SkillsRequired: []string{"React", " ", "Node"},
		Status:         domain.JobStatusPublished,
	})

	require.NoError(t, err)
	assert.True(t, job.IsPublished)
	assert.True(t, job.IsActive)
	assert.NotNil(t, job.PublishedAt)
	assert.Equal(t, []string{"React", "Node"}, job.SkillsRequired)
	f.publisher.AssertNumberOfCalls(t, "PublishJobPublished", 1)
}

func TestCreateJobSurvivesPublishFailure(t *testing.T) {
	f := newJobFixture()
	f.expectCreate()
	f.verifications.On("GetByEmployerID", mock.Anything, employer.ID).Return(verification(employer.ID, verifiedDocs()), nil)
	f.publisher.On("PublishJobPublished", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	job, err := f.uc.CreateJob(context.Background(), employer, domain.JobInput{
		Title:  "Frontend Engineer",
		Status: domain.JobStatusPublished,
	})

	require.NoError(t, err)
	assert.True(t, job.IsPublished)
}

func TestUpdateJobEdges(t *testing.T) {
	t.Run("draft to published runs the gate and fires", func(t *testing.T) {
		f := newJobFixture()
		draft := &domain.Job{ID: 7, EmployerID: employer.ID, Title: "QA", Status: domain.JobStatusDraft}
		f.jobs.On("GetByID", mock.Anything, int64(7)).Return(draft, nil)
		f.jobs.On("Update", mock.Anything, draft).Return(nil)
		f.verifications.On("GetByEmployerID", mock.Anything, employer.ID).Return(verification(employer.ID, verifiedDocs()), nil)
		f.publisher.On("PublishJobPublished", mock.Anything, mock.Anything).Return(nil).Once()

		job, err := f.uc.UpdateJob(context.Background(), employer, 7, domain.JobInput{Title: "QA", Status: domain.JobStatusPublished})

		require.NoError(t, err)
		assert.True(t, job.IsPublished)
		f.publisher.AssertNumberOfCalls(t, "PublishJobPublished", 1)
	})

	t.Run("saving a published job again does not fire", func(t *testing.T) {
		f := newJobFixture()
		job := publishedJob(8, employer.ID, "Go")
		f.jobs.On("GetByID", mock.Anything, int64(8)).Return(job, nil)
		f.jobs.On("Update", mock.Anything, job).Return(nil)

		_, err := f.uc.UpdateJob(context.Background(), employer, 8, domain.JobInput{Title: "Go dev", Status: domain.JobStatusPublished})

		require.NoError(t, err)
		f.publisher.AssertNotCalled(t, "PublishJobPublished", mock.Anything, mock.Anything)
		f.verifications.AssertNotCalled(t, "GetByEmployerID", mock.Anything, mock.Anything)
	})

	t.Run("published back to draft clears flags", func(t *testing.T) {
		f := newJobFixture()
		job := publishedJob(9, employer.ID, "Go")
		f.jobs.On("GetByID", mock.Anything, int64(9)).Return(job, nil)
		f.jobs.On("Update", mock.Anything, job).Return(nil)

		updated, err := f.uc.UpdateJob(context.Background(), employer, 9, domain.JobInput{Title: "Go dev", Status: domain.JobStatusDraft})

		require.NoError(t, err)
		assert.False(t, updated.IsPublished)
		assert.False(t, updated.IsActive)
		f.publisher.AssertNotCalled(t, "PublishJobPublished", mock.Anything, mock.Anything)
	})

	t.Run("draft to published while unverified", func(t *testing.T) {
		f := newJobFixture()
		draft := &domain.Job{ID: 10, EmployerID: employer.ID, Title: "QA", Status: domain.JobStatusDraft}
		f.jobs.On("GetByID", mock.Anything, int64(10)).Return(draft, nil)
		f.verifications.On("GetByEmployerID", mock.Anything, employer.ID).
			Return(verification(employer.ID, domain.VerificationDocs{Registration: domain.DocumentPending}), nil)

		_, err := f.uc.UpdateJob(context.Background(), employer, 10, domain.JobInput{Title: "QA", Status: domain.JobStatusPublished})

		assert.Equal(t, apperror.CodeEmployerNotVerified, apperror.ReasonOf(err))
		f.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("other employer cannot edit", func(t *testing.T) {
		f := newJobFixture()
		f.jobs.On("GetByID", mock.Anything, int64(11)).Return(publishedJob(11, "emp-2"), nil)

		_, err := f.uc.UpdateJob(context.Background(), employer, 11, domain.JobInput{Title: "QA"})

		assert.Equal(t, apperror.CodeNotJobOwner, apperror.ReasonOf(err))
	})
}

func TestPublishJob(t *testing.T) {
	t.Run("already published is a no-op", func(t *testing.T) {
		f := newJobFixture()
		f.jobs.On("GetByID", mock.Anything, int64(3)).Return(publishedJob(3, employer.ID), nil)

		job, err := f.uc.PublishJob(context.Background(), employer, 3)

		require.NoError(t, err)
		assert.True(t, job.IsPublished)
		f.jobs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "PublishJobPublished", mock.Anything, mock.Anything)
	})

	t.Run("jobseeker cannot publish", func(t *testing.T) {
		f := newJobFixture()

		_, err := f.uc.PublishJob(context.Background(), jobseeker, 3)

		assert.Equal(t, apperror.CodeRoleNotAllowed, apperror.ReasonOf(err))
	})
}

func TestDeleteJob(t *testing.T) {
	f := newJobFixture()
	f.jobs.On("GetByID", mock.Anything, int64(5)).Return(publishedJob(5, employer.ID), nil)
	f.jobs.On("Delete", mock.Anything, int64(5)).Return(nil)
	f.jobs.On("GetByID", mock.Anything, int64(6)).Return(nil, domain.ErrNotFound)

	assert.NoError(t, f.uc.DeleteJob(context.Background(), employer, 5))

	err := f.uc.DeleteJob(context.Background(), employer, 6)
	assert.Equal(t, apperror.CodeJobNotFound, apperror.ReasonOf(err))
}

func TestCreateJobValidation(t *testing.T) {
	f := newJobFixture()
	lo, hi := 5000.0, 3000.0

	_, err := f.uc.CreateJob(context.Background(), employer, domain.JobInput{Title: "QA", SalaryMin: &lo, SalaryMax: &hi})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.uc.CreateJob(context.Background(), employer, domain.JobInput{Title: "  "})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestJobReads(t *testing.T) {
	f := newJobFixture()
	f.jobs.On("GetByID", mock.Anything, int64(5)).Return(publishedJob(5, employer.ID, "Go"), nil)
	f.jobs.On("GetByID", mock.Anything, int64(6)).Return(nil, domain.ErrNotFound)
	f.jobs.On("FetchByEmployerID", mock.Anything, employer.ID).
		Return([]domain.Job{*publishedJob(5, employer.ID)}, nil)

	job, err := f.uc.GetJob(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, job.SkillsRequired)

	_, err = f.uc.GetJob(context.Background(), 6)
	assert.Equal(t, apperror.CodeJobNotFound, apperror.ReasonOf(err))

	jobs, err := f.uc.ListJobsByEmployer(context.Background(), employer)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = f.uc.ListJobsByEmployer(context.Background(), jobseeker)
	assert.Equal(t, apperror.CodeRoleNotAllowed, apperror.ReasonOf(err))
	f.jobs.AssertNumberOfCalls(t, "FetchByEmployerID", 1)
}
