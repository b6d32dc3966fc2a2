// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/repute/internal/domain/leaderboard"
	"github.com/okian/repute/internal/domain/model"
	"github.com/okian/repute/pkg/logger"
)

const requestTimeout = 30 * time.Second

// Reputation is the facade the handlers drive. Keeping it an interface
// lets tests substitute failing implementations.
type Reputation interface {
	Initialize(ctx context.Context, id string) (model.Profile, error)
	GetProfile(ctx context.Context, id string) (model.Profile, error)
	GetTier(ctx context.Context, id string) (model.Tier, error)
	GetMultiplier(ctx context.Context, id string) (uint32, error)
	RecordEvent(ctx context.Context, id string, kind model.EventKind, value uint32) (uint32, error)

	Catalog() []model.Achievement
	Achievements(ctx context.Context, id string) ([]model.Achievement, error)
	AwardAchievement(ctx context.Context, id string, aid uint64) (bool, error)
	CheckEligible(ctx context.Context, id string, aid uint64) (bool, error)

	RecordOnLeaderboard(ctx context.Context, group, id string) error
	TopContributors(ctx context.Context, group string, limit int) ([]leaderboard.Entry, error)
	ContributorRank(ctx context.Context, group, id string) (leaderboard.Entry, error)

	// SeenAndRecord and Unrecord back event_id idempotency.
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	Reputation
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	profilesHandler     *ProfilesHandler
	eventsHandler       *EventsHandler
	achievementsHandler *AchievementsHandler
	leaderboardHandler  *LeaderboardHandler
	rankHandler         *RankHandler
	logger              logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		profilesHandler:     NewProfilesHandler(deps),
		eventsHandler:       NewEventsHandler(deps),
		achievementsHandler: NewAchievementsHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps, defaultLeaderboardLimit),
		rankHandler:         NewRankHandler(deps),
		logger:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns a chi router with every business route mounted.
// Callers may attach further routes (docs) to the returned router.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(MetricsMiddleware)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.Metrics())
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Get("/achievements", s.achievementsHandler.HandleCatalog)

	r.Route("/profiles/{id}", func(r chi.Router) {
		r.Post("/", s.profilesHandler.HandleInitialize)
		r.Get("/", s.profilesHandler.HandleGetProfile)
		r.Get("/tier", s.profilesHandler.HandleGetTier)
		r.Get("/multiplier", s.profilesHandler.HandleGetMultiplier)
		r.Post("/events", s.eventsHandler.HandlePostEvent)
		r.Get("/achievements", s.achievementsHandler.HandleHeld)
		r.Post("/achievements/{aid}", s.achievementsHandler.HandleAward)
		r.Get("/achievements/{aid}/eligibility", s.achievementsHandler.HandleEligibility)
	})

	r.Route("/groups/{gid}", func(r chi.Router) {
		r.Get("/leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
		r.Post("/members/{id}", s.leaderboardHandler.HandleRecordMember)
		r.Get("/members/{id}/rank", s.rankHandler.HandleGetRank)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Any("duration", time.Since(start)),
		)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a facade error onto its HTTP status.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
