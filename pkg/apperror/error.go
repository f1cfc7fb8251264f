package apperror

import (
	"errors"
	"net/http"
)

// Kind groups errors into the categories surfaced at the API boundary.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindState         Kind = "state"
	KindDependency    Kind = "dependency"
	KindInternal      Kind = "internal"
)

// Stable reason codes. Callers render UI states from these, so never rename them.
const (
	CodeEmployerNotVerified     = "EMPLOYER_NOT_VERIFIED"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidStatus           = "INVALID_STATUS"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeApplicationFinalized    = "APPLICATION_FINALIZED"
	CodeRoleNotAllowed          = "ROLE_NOT_ALLOWED"
	CodeNotJobOwner             = "NOT_JOB_OWNER"
	CodeNotApplicationOwner     = "NOT_APPLICATION_OWNER"
	CodeNotParticipant          = "NOT_PARTICIPANT"
	CodeMessagingNotAllowed     = "MESSAGING_NOT_ALLOWED"
	CodeJobNotFound             = "JOB_NOT_FOUND"
	CodeApplicationNotFound     = "APPLICATION_NOT_FOUND"
	CodeNotificationNotFound    = "NOTIFICATION_NOT_FOUND"
	CodeProfileNotFound         = "PROFILE_NOT_FOUND"
	CodeJobNotOpen              = "JOB_NOT_OPEN"
	CodeApplicationDeadline     = "APPLICATION_DEADLINE_PASSED"
	CodeResumeRequired          = "RESUME_REQUIRED"
	CodeDuplicateApplication    = "DUPLICATE_APPLICATION"
	CodeNotificationWriteFailed = "NOTIFICATION_WRITE_FAILED"
	CodeEventPublishFailed      = "EVENT_PUBLISH_FAILED"
	CodeUnauthenticated         = "UNAUTHENTICATED"
	CodeCSRFTokenInvalid        = "CSRF_TOKEN_INVALID"
	CodeInternal                = "INTERNAL"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newKind(kind Kind, code int, reason, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return newKind(KindValidation, http.StatusBadRequest, CodeInvalidInput, message, nil)
}

func Unauthorized(message string) *AppError {
	return newKind(KindAuthorization, http.StatusUnauthorized, CodeUnauthenticated, message, nil)
}

func Forbidden(message string) *AppError {
	return newKind(KindAuthorization, http.StatusForbidden, CodeRoleNotAllowed, message, nil)
}

func Internal(err error) *AppError {
	return newKind(KindInternal, http.StatusInternalServerError, CodeInternal, "Internal Server Error", err)
}

// Validation reports missing or malformed input.
func Validation(reason, message string) *AppError {
	return newKind(KindValidation, http.StatusBadRequest, reason, message, nil)
}

// Authorization reports a wrong role or a caller that does not own the resource.
func Authorization(reason, message string) *AppError {
	return newKind(KindAuthorization, http.StatusForbidden, reason, message, nil)
}

func Missing(reason, message string) *AppError {
	return newKind(KindNotFound, http.StatusNotFound, reason, message, nil)
}

func Conflict(reason, message string) *AppError {
	return newKind(KindConflict, http.StatusConflict, reason, message, nil)
}

// State reports an operation that is illegal in the resource's current state.
// Unverified publication is a state error with HTTP 403 so clients can tell it
// apart from form errors.
func State(reason, message string) *AppError {
	code := http.StatusConflict
	if reason == CodeEmployerNotVerified {
		code = http.StatusForbidden
	}
	return newKind(KindState, code, reason, message, nil)
}

// Dependency wraps a failure in a best-effort collaborator (notifications, events).
func Dependency(reason string, err error) *AppError {
	return newKind(KindDependency, http.StatusServiceUnavailable, reason, "Dependency failure", err)
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// ReasonOf returns the stable reason code of err, or "" for foreign errors.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
