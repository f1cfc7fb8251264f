package domain

import (
	"context"
	"time"
)

// DocumentStatus is the review outcome of a single verification document.
type DocumentStatus string

const (
	DocumentNotSubmitted DocumentStatus = "not_submitted"
	DocumentSubmitted    DocumentStatus = "submitted"
	DocumentPending      DocumentStatus = "pending"
	DocumentApproved     DocumentStatus = "approved"
	DocumentRejected     DocumentStatus = "rejected"
)

// ValidDocumentStatuses for validation
var ValidDocumentStatuses = []DocumentStatus{
	DocumentNotSubmitted, DocumentSubmitted, DocumentPending, DocumentApproved, DocumentRejected,
}

// OverallStatus is the employer-wide verification status derived from the three documents.
type OverallStatus string

const (
	OverallUnverified OverallStatus = "unverified"
	OverallPending    OverallStatus = "pending"
	OverallVerified   OverallStatus = "verified"
	OverallRejected   OverallStatus = "rejected"
)

// DocumentSlot names one of the three independent verification documents.
type DocumentSlot string

const (
	SlotRegistration DocumentSlot = "registration_proof"
	SlotGovernmentID DocumentSlot = "government_id"
	SlotAddress      DocumentSlot = "address_proof"
)

// VerificationDocs holds the review outcome of each employer document.
// The zero value of a slot is treated as not submitted.
type VerificationDocs struct {
	Registration DocumentStatus `json:"registration_proof"`
	GovernmentID DocumentStatus `json:"government_id"`
	Address      DocumentStatus `json:"address_proof"`
}

func (d VerificationDocs) statuses() [3]DocumentStatus {
	return [3]DocumentStatus{normalizeDoc(d.Registration), normalizeDoc(d.GovernmentID), normalizeDoc(d.Address)}
}

// WithStatus returns a copy of d with one slot replaced.
func (d VerificationDocs) WithStatus(slot DocumentSlot, status DocumentStatus) (VerificationDocs, bool) {
	switch slot {
	case SlotRegistration:
		d.Registration = status
	case SlotGovernmentID:
		d.GovernmentID = status
	case SlotAddress:
		d.Address = status
	default:
		return d, false
	}
	return d, true
}

// DeriveOverallStatus is the only place the employer-wide status is computed.
//
//   - verified   iff all three documents are approved
//   - rejected   iff any document is rejected
//   - pending    iff any document is pending or submitted
//   - unverified otherwise
func DeriveOverallStatus(docs VerificationDocs) OverallStatus {
	statuses := docs.statuses()

	approved := 0
	anyRejected := false
	anyPending := false
	for _, s := range statuses {
		switch s {
		case DocumentApproved:
			approved++
		case DocumentRejected:
			anyRejected = true
		case DocumentPending, DocumentSubmitted:
			anyPending = true
		}
	}

	switch {
	case approved == len(statuses):
		return OverallVerified
	case anyRejected:
		return OverallRejected
	case anyPending:
		return OverallPending
	default:
		return OverallUnverified
	}
}

// CanPublish reports whether an employer with these documents may publish jobs.
func CanPublish(docs VerificationDocs) bool {
	return DeriveOverallStatus(docs) == OverallVerified
}

func normalizeDoc(s DocumentStatus) DocumentStatus {
	if s == "" {
		return DocumentNotSubmitted
	}
	return s
}

// EmployerVerification is the stored verification record of an employer.
type EmployerVerification struct {
	EmployerID    string           `json:"employer_id"`
	Docs          VerificationDocs `json:"documents"`
	OverallStatus OverallStatus    `json:"overall_status"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// VerificationStore is the profile-store view of employer verification.
// Document uploads and admin review live outside this service; SetDocumentStatus
// is the hook they call so the derived status is recomputed on every change.
type VerificationStore interface {
	GetByEmployerID(ctx context.Context, employerID string) (*EmployerVerification, error)
	SetDocumentStatus(ctx context.Context, employerID string, slot DocumentSlot, status DocumentStatus) (*EmployerVerification, error)
}

// VerificationUsecase exposes the derived verification state.
type VerificationUsecase interface {
	GetStatus(ctx context.Context, employerID string) (*EmployerVerification, error)
	RecordDocumentReview(ctx context.Context, employerID string, slot DocumentSlot, status DocumentStatus) (*EmployerVerification, error)
}
