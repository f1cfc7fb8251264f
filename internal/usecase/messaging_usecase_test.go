package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/usecase"
	"gradhire-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func applicationWithStatus(status domain.ApplicationStatus) *domain.Application {
	title := "Frontend Engineer"
	return &domain.Application{
		ID: 31, JobID: 100, JobseekerID: jobseeker.ID, EmployerID: employer.ID,
		Status: status, JobTitle: &title,
	}
}

func appsOf(apps ...*domain.Application) []domain.Application {
	out := make([]domain.Application, 0, len(apps))
	for _, a := range apps {
		out = append(out, *a)
	}
	return out
}

func TestCheckEligibility(t *testing.T) {
	tests := []struct {
		name     string
		app      *domain.Application
		eligible bool
		reason   string
	}{
		{"no application", nil, false, "no application between these users"},
		{"pending", applicationWithStatus(domain.ApplicationStatusPending), false,
			"messaging available only after shortlist or acceptance; current status: pending"},
		{"rejected", applicationWithStatus(domain.ApplicationStatusRejected), false,
			"messaging available only after shortlist or acceptance; current status: rejected"},
		{"shortlisted", applicationWithStatus(domain.ApplicationStatusShortlisted), true, ""},
		{"accepted", applicationWithStatus(domain.ApplicationStatusAccepted), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := new(MockApplicationRepo)
			if tt.app == nil {
				apps.On("ListBetween", mock.Anything, jobseeker.ID, employer.ID, (*int64)(nil)).Return(nil, nil)
			} else {
				apps.On("ListBetween", mock.Anything, jobseeker.ID, employer.ID, (*int64)(nil)).Return(appsOf(tt.app), nil)
			}
			uc := usecase.NewMessagingUsecase(apps, new(MockMessageRepo), nil, nil)

			elig, err := uc.CheckEligibility(context.Background(), jobseeker.ID, employer.ID, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, elig.Eligible)
			assert.Equal(t, tt.reason, elig.Reason)
			assert.Equal(t, domain.ConversationID(employer.ID, jobseeker.ID), elig.ConversationID)
			if tt.eligible {
				assert.Equal(t, tt.app, elig.Application)
			}
		})
	}
}

func TestSendMessageGateRunsEveryTime(t *testing.T) {
	apps := new(MockApplicationRepo)
	apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).
		Return(appsOf(applicationWithStatus(domain.ApplicationStatusShortlisted)), nil).Once()
	apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).
		Return(appsOf(applicationWithStatus(domain.ApplicationStatusRejected)), nil).Once()
	messages := new(MockMessageRepo)
	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil).Once()
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(domain.NotifyCreated, nil)
	uc := usecase.NewMessagingUsecase(apps, messages, notifier, nil)
	input := domain.SendMessageInput{RecipientID: jobseeker.ID, Body: "Can we talk?"}

	msg, err := uc.SendMessage(context.Background(), employer, input)
	require.NoError(t, err)
	assert.Equal(t, int64(31), msg.ApplicationID)
	assert.Equal(t, domain.MessageTypeText, msg.Type)

	_, err = uc.SendMessage(context.Background(), employer, input)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
	assert.Equal(t, apperror.CodeMessagingNotAllowed, apperror.ReasonOf(err))
	assert.Contains(t, err.Error(), "current status: rejected")

	apps.AssertNumberOfCalls(t, "ListBetween", 2)
	messages.AssertNumberOfCalls(t, "Create", 1)
}

func TestSendMessageSurvivesNotificationFailure(t *testing.T) {
	apps := new(MockApplicationRepo)
	apps.On("ListBetween", mock.Anything, jobseeker.ID, employer.ID, (*int64)(nil)).
		Return(appsOf(applicationWithStatus(domain.ApplicationStatusAccepted)), nil)
	messages := new(MockMessageRepo)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).
		Return(domain.NotifyOutcome(""), apperror.Dependency(apperror.CodeNotificationWriteFailed, errors.New("db down")))
	uc := usecase.NewMessagingUsecase(apps, messages, notifier, nil)

	msg, err := uc.SendMessage(context.Background(), jobseeker, domain.SendMessageInput{RecipientID: employer.ID, Body: "Thanks!"})

	require.NoError(t, err)
	assert.Equal(t, jobseeker.ID, msg.SenderID)
}

func TestRapidMessagesProduceOneNotification(t *testing.T) {
	apps := new(MockApplicationRepo)
	apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).
		Return(appsOf(applicationWithStatus(domain.ApplicationStatusShortlisted)), nil)
	messages := new(MockMessageRepo)
	var nextID int64
	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) {
			nextID++
			args.Get(1).(*domain.Message).ID = nextID
		}).Return(nil)
	store := newNotificationStore()
	notifications := usecase.NewNotificationUsecase(store, new(MockJobRepo), new(MockProfileStore), fastPolicy(500), nil)
	uc := usecase.NewMessagingUsecase(apps, messages, notifications, nil)

	for _, body := range []string{"Hello", "Following up on my last message"} {
		_, err := uc.SendMessage(context.Background(), employer, domain.SendMessageInput{RecipientID: jobseeker.ID, Body: body})
		require.NoError(t, err)
	}

	rows := store.forUser(jobseeker.ID, domain.NotificationNewMessage)
	require.Len(t, rows, 1)
	assert.Equal(t, "Following up on my last message", rows[0].Message)
	assert.Equal(t, 2, rows[0].Metadata["message_count"])
}

func TestScheduleInterview(t *testing.T) {
	when := time.Now().Add(48 * time.Hour)
	url := "https://meet.example.com/abc"

	t.Run("eligible writes message and interview", func(t *testing.T) {
		apps := new(MockApplicationRepo)
		apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).
			Return(appsOf(applicationWithStatus(domain.ApplicationStatusShortlisted)), nil)
		messages := new(MockMessageRepo)
		messages.On("CreateInterview", mock.Anything, mock.AnythingOfType("*domain.Message"), mock.AnythingOfType("*domain.Interview")).
			Return(nil)
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Type == domain.NotificationInterview && n.UserID == jobseeker.ID
		})).Return(domain.NotifyCreated, nil).Once()
		uc := usecase.NewMessagingUsecase(apps, messages, notifier, nil)

		msg, interview, err := uc.ScheduleInterview(context.Background(), employer, domain.ScheduleInterviewInput{
			RecipientID: jobseeker.ID, ScheduledAt: when, MeetingURL: &url,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.MessageTypeInterview, msg.Type)
		assert.Equal(t, 30, interview.DurationMinutes)
		assert.Equal(t, int64(31), interview.ApplicationID)
		notifier.AssertExpectations(t)
	})

	t.Run("ineligible writes nothing", func(t *testing.T) {
		apps := new(MockApplicationRepo)
		apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).
			Return(appsOf(applicationWithStatus(domain.ApplicationStatusPending)), nil)
		messages := new(MockMessageRepo)
		uc := usecase.NewMessagingUsecase(apps, messages, new(MockNotifier), nil)

		_, _, err := uc.ScheduleInterview(context.Background(), employer, domain.ScheduleInterviewInput{
			RecipientID: jobseeker.ID, ScheduledAt: when,
		})

		assert.Equal(t, apperror.CodeMessagingNotAllowed, apperror.ReasonOf(err))
		messages.AssertNotCalled(t, "CreateInterview", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("past time is rejected before the gate", func(t *testing.T) {
		apps := new(MockApplicationRepo)
		uc := usecase.NewMessagingUsecase(apps, new(MockMessageRepo), nil, nil)

		_, _, err := uc.ScheduleInterview(context.Background(), employer, domain.ScheduleInterviewInput{
			RecipientID: jobseeker.ID, ScheduledAt: time.Now().Add(-time.Minute),
		})

		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		apps.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListConversationUsesSymmetricID(t *testing.T) {
	messages := new(MockMessageRepo)
	uc := usecase.NewMessagingUsecase(new(MockApplicationRepo), messages, nil, nil)

	history := []domain.Message{{ID: 1, ConversationID: "emp-1_js-1", SenderID: employer.ID, RecipientID: jobseeker.ID, Body: "Hi"}}
	messages.On("ListByConversation", mock.Anything, jobseeker.ID, employer.ID).Return(history, nil)
	messages.On("ListByConversation", mock.Anything, employer.ID, jobseeker.ID).Return(history, nil)

	fromSeeker, err := uc.ListConversation(context.Background(), jobseeker, employer.ID)
	require.NoError(t, err)
	fromEmployer, err := uc.ListConversation(context.Background(), employer, jobseeker.ID)
	require.NoError(t, err)
	assert.Equal(t, fromSeeker, fromEmployer)
	require.Len(t, fromSeeker, 1)

	_, err = uc.ListConversation(context.Background(), domain.Actor{}, jobseeker.ID)
	assert.Error(t, err)
	_, err = uc.ListConversation(context.Background(), employer, " ")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	messages.AssertNumberOfCalls(t, "ListByConversation", 2)
}

func TestListConversationDropsCollidingPair(t *testing.T) {
	// "emp" + "seeker_victim" and "emp_seeker" + "victim" share one conversation id.
	require.Equal(t, domain.ConversationID("emp", "seeker_victim"), domain.ConversationID("emp_seeker", "victim"))

	attacker := domain.Actor{ID: "emp_seeker", Role: domain.RoleEmployer}
	convo := domain.ConversationID("emp", "seeker_victim")
	messages := new(MockMessageRepo)
	messages.On("ListByConversation", mock.Anything, "emp_seeker", "victim").Return([]domain.Message{
		{ID: 1, ConversationID: convo, SenderID: "emp", RecipientID: "seeker_victim", Body: "private"},
		{ID: 2, ConversationID: convo, SenderID: "victim", RecipientID: "emp_seeker", Body: "hello"},
	}, nil)
	uc := usecase.NewMessagingUsecase(new(MockApplicationRepo), messages, nil, nil)

	got, err := uc.ListConversation(context.Background(), attacker, "victim")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestCheckEligibilityPrefersEligibleApplication(t *testing.T) {
	older := applicationWithStatus(domain.ApplicationStatusShortlisted)
	older.ID, older.JobID = 7, 70
	newer := applicationWithStatus(domain.ApplicationStatusPending)
	apps := new(MockApplicationRepo)
	apps.On("ListBetween", mock.Anything, employer.ID, jobseeker.ID, (*int64)(nil)).Return(appsOf(newer, older), nil)
	uc := usecase.NewMessagingUsecase(apps, new(MockMessageRepo), nil, nil)

	elig, err := uc.CheckEligibility(context.Background(), employer.ID, jobseeker.ID, nil)

	require.NoError(t, err)
	assert.True(t, elig.Eligible)
	require.NotNil(t, elig.Application)
	assert.Equal(t, int64(7), elig.Application.ID)
}
