package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/internal/domain/scoring"
)

// ProfileDependencies defines the profile operations used by the handlers.
type ProfileDependencies interface {
	Initialize(ctx context.Context, id string) (model.Profile, error)
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	GetTier(ctx context.Context, id string) (model.Tier, error)
	GetMultiplier(ctx context.Context, id string) (uint32, error)
}

// ProfilesHandler handles profile lifecycle and read requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

type tierResponse struct {
	ContributorID string     `json:"contributor_id"`
	Tier          model.Tier `json:"tier"`
}

type multiplierResponse struct {
	ContributorID    string `json:"contributor_id"`
	Multiplier       uint32 `json:"multiplier"`
	GovernanceWeight *int64 `json:"governance_weight,omitempty"`
}

// HandleInitialize handles POST /profiles/{id}.
func (h *ProfilesHandler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	const op = "api.initialize_profile"
	p, err := h.deps.Initialize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetProfile handles GET /profiles/{id}.
func (h *ProfilesHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleGetTier handles GET /profiles/{id}/tier.
func (h *ProfilesHandler) HandleGetTier(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tier"
	id := chi.URLParam(r, "id")
	t, err := h.deps.GetTier(r.Context(), id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tierResponse{ContributorID: id, Tier: t})
}

// HandleGetMultiplier handles GET /profiles/{id}/multiplier[?base=N].
// With base, the response also carries the governance weight.
func (h *ProfilesHandler) HandleGetMultiplier(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_multiplier"
	id := chi.URLParam(r, "id")

	var base *int64
	if raw := r.URL.Query().Get("base"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
			return
		}
		base = &v
	}

	m, err := h.deps.GetMultiplier(r.Context(), id)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	resp := multiplierResponse{ContributorID: id, Multiplier: m}
	if base != nil {
		weight := scoring.GovernanceWeight(*base, m)
		resp.GovernanceWeight = &weight
	}
	writeJSON(w, http.StatusOK, resp)
}
