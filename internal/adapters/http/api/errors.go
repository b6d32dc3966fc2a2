package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/repute/internal/app"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrNotAwarded  = errors.New("achievement not awarded")
	ErrUnavailable = errors.New("service unavailable")
)

// Wrap prefixes err with the handler operation name.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// classify returns the HTTP status and error code of err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound, "profile_not_found"
	case errors.Is(err, service.ErrAchievementNotFound):
		return http.StatusNotFound, "achievement_not_found"
	case errors.Is(err, service.ErrNotOnLeaderboard):
		return http.StatusNotFound, "not_on_leaderboard"
	case errors.Is(err, service.ErrProfileAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, ErrNotAwarded),
		errors.Is(err, service.ErrAlreadyAwarded),
		errors.Is(err, service.ErrNotEligible):
		return http.StatusUnprocessableEntity, "not_awarded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidContributor),
		errors.Is(err, service.ErrInvalidGroup),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, scoring.ErrInvalidEvent),
		errors.Is(err, model.ErrUnknownEventKind):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
