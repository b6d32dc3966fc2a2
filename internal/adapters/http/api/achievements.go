package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okian/repute/internal/domain/model"
)

// AchievementDependencies defines the achievement operations used by the
// handlers.
type AchievementDependencies interface {
	Catalog() []model.Achievement
	Achievements(ctx context.Context, id string) ([]model.Achievement, error)
	AwardAchievement(ctx context.Context, id string, aid uint64) (bool, error)
	CheckEligible(ctx context.Context, id string, aid uint64) (bool, error)
}

// AchievementsHandler handles catalog, award and eligibility requests.
type AchievementsHandler struct {
	deps AchievementDependencies
}

// NewAchievementsHandler creates a new achievements handler.
func NewAchievementsHandler(deps AchievementDependencies) *AchievementsHandler {
	return &AchievementsHandler{deps: deps}
}

type awardResponse struct {
	ContributorID string `json:"contributor_id"`
	AchievementID uint64 `json:"achievement_id"`
	Awarded       bool   `json:"awarded"`
}

type eligibilityResponse struct {
	ContributorID string `json:"contributor_id"`
	AchievementID uint64 `json:"achievement_id"`
	Eligible      bool   `json:"eligible"`
}

// HandleCatalog handles GET /achievements.
func (h *AchievementsHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog())
}

// HandleHeld handles GET /profiles/{id}/achievements.
func (h *AchievementsHandler) HandleHeld(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_achievements"
	held, err := h.deps.Achievements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, held)
}

// HandleAward handles POST /profiles/{id}/achievements/{aid}. A refused
// award (already held or not eligible) answers 422.
func (h *AchievementsHandler) HandleAward(w http.ResponseWriter, r *http.Request) {
	const op = "api.award_achievement"
	id := chi.URLParam(r, "id")
	aid, err := achievementID(r)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	ok, err := h.deps.AwardAchievement(r.Context(), id, aid)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, awardResponse{ContributorID: id, AchievementID: aid, Awarded: ok})
}

// HandleEligibility handles GET /profiles/{id}/achievements/{aid}/eligibility.
func (h *AchievementsHandler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	const op = "api.check_eligibility"
	id := chi.URLParam(r, "id")
	aid, err := achievementID(r)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	ok, err := h.deps.CheckEligible(r.Context(), id, aid)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibilityResponse{ContributorID: id, AchievementID: aid, Eligible: ok})
}

func achievementID(r *http.Request) (uint64, error) {
	aid, err := strconv.ParseUint(chi.URLParam(r, "aid"), 10, 64)
	if err != nil {
		return 0, ErrBadRequest
	}
	return aid, nil
}
