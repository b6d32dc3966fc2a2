// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okian/repute/internal/domain/leaderboard"
)

const defaultLeaderboardLimit = 10

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	RecordOnLeaderboard(ctx context.Context, group, id string) error
	TopContributors(ctx context.Context, group string, limit int) ([]leaderboard.Entry, error)
	ContributorRank(ctx context.Context, group, id string) (leaderboard.Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
	}
}

// HandleGetLeaderboard handles GET /groups/{gid}/leaderboard?limit=N
// requests. The facade clamps limits above its configured maximum.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
			return
		}
		n = v
	}
	entries, err := h.deps.TopContributors(r.Context(), chi.URLParam(r, "gid"), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRecordMember handles POST /groups/{gid}/members/{id}. It records
// the contributor's current score and answers with the resulting entry.
func (h *LeaderboardHandler) HandleRecordMember(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_member"
	gid, id := chi.URLParam(r, "gid"), chi.URLParam(r, "id")
	if err := h.deps.RecordOnLeaderboard(r.Context(), gid, id); err != nil {
		writeFailure(w, op, err)
		return
	}
	entry, err := h.deps.ContributorRank(r.Context(), gid, id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
