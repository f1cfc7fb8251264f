package usecase

import (
	"errors"
	"strconv"
	"strings"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/apperror"

	"github.com/google/uuid"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newEventID() string {
	return uuid.NewString()
}

// notFoundOr maps the repository not-found sentinel to a typed error with the
// given reason and wraps anything else as internal.
func notFoundOr(err error, reason, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.Missing(reason, message)
	}
	return apperror.Internal(err)
}

// cleanSkills trims entries and drops blanks while keeping the caller's casing.
func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
