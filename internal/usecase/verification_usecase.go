package usecase

import (
	"context"
	"slices"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"
	"gradhire-backend/pkg/eventlog"
)

type verificationUsecase struct {
	verificationRepo domain.VerificationStore
	events           *eventlog.Logger
}

func NewVerificationUsecase(repo domain.VerificationStore, events *eventlog.Logger) domain.VerificationUsecase {
	if events == nil {
		events = eventlog.Nop()
	}
	return &verificationUsecase{
		verificationRepo: repo,
		events:           events,
	}
}

func (uc *verificationUsecase) GetStatus(ctx context.Context, employerID string) (*domain.EmployerVerification, error) {
	if employerID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	v, err := uc.verificationRepo.GetByEmployerID(ctx, employerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	v.OverallStatus = domain.DeriveOverallStatus(v.Docs)
	return v, nil
}

// RecordDocumentReview is the hook the upload and admin-review flows call when
// one document changes. The store recomputes the overall status in the same write.
func (uc *verificationUsecase) RecordDocumentReview(ctx context.Context, employerID string, slot domain.DocumentSlot, status domain.DocumentStatus) (*domain.EmployerVerification, error) {
	if _, ok := (domain.VerificationDocs{}).WithStatus(slot, status); !ok {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Unknown document: "+string(slot))
	}
	if !slices.Contains(domain.ValidDocumentStatuses, status) {
		return nil, apperror.Validation(apperror.CodeInvalidStatus, "Unknown document status: "+string(status))
	}

	before, err := uc.verificationRepo.GetByEmployerID(ctx, employerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	after, err := uc.verificationRepo.SetDocumentStatus(ctx, employerID, slot, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.events.Log(ctx, eventlog.Record{
		Event:       eventlog.EventVerificationRecomputed,
		SubjectType: "employer",
		SubjectID:   eventlog.HashValue(employerID),
		Details: map[string]any{
			"slot":    slot,
			"status":  status,
			"from":    domain.DeriveOverallStatus(before.Docs),
			"overall": after.OverallStatus,
		},
	})
	return after, nil
}
