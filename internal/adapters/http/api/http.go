// Package api exposes the read-only HTTP surface of the simulation.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/sportlife/internal/adapters/repository"
	"github.com/okian/sportlife/internal/domain/model"
)

const defaultStandingsLimit = 16

// Entry mirrors the read shape returned by standings queries.
type Entry = repository.Entry

// StandingsReader exposes standings data.
type StandingsReader interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, id string) (Entry, error)
}

// HistoryReader exposes the career archive.
type HistoryReader interface {
	Retired() []model.Retired
	Champions() []model.SeasonRecord
}

// Server wires HTTP routes for the API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	standingsHandler *StandingsHandler
	rankHandler      *RankHandler
	historyHandler   *HistoryHandler
	live             http.Handler
}

// NewServer creates a new API server with all handlers. live may be nil.
func NewServer(standings StandingsReader, history HistoryReader, stats StatsProvider, live http.Handler, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(stats),
		standingsHandler: NewStandingsHandler(standings, maxLimit),
		rankHandler:      NewRankHandler(standings),
		historyHandler:   NewHistoryHandler(history),
		live:             live,
	}
}

// Router builds the chi router with every route attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	r.Get("/rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	r.Get("/retired", MetricsMiddleware(s.historyHandler.HandleRetired, "retired"))
	r.Get("/champions", MetricsMiddleware(s.historyHandler.HandleChampions, "champions"))
	if s.live != nil {
		// The metrics wrapper would hide http.Hijacker from the upgrader.
		r.Handle("/live", s.live)
	}
	return r
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

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
