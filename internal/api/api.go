// Package api is the Read API (C9): a chi-routed REST/JSON surface over
// the Store Gateway for trending clusters, cluster detail, search,
// analytics, bias distribution, and per-user blindspots/ratings. Grounded
// on the teacher's graphql.go for error-to-status mapping and middleware
// choice, but realized as discrete JSON endpoints (github.com/go-chi/chi)
// rather than a GraphQL schema — §6 enumerates fixed request/response
// shapes per endpoint, not an ad hoc query language, so chi is the better
// fit; see DESIGN.md for the full justification.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/store"
)

// Server wires the Read API's handlers to the Store Gateway.
type Server struct {
	store *store.Store
	mux   *chi.Mux
}

// New builds a Server with every route mounted.
func New(st *store.Store) *Server {
	s := &Server{store: st, mux: chi.NewRouter()}

	s.mux.Use(middleware.RequestID)
	s.mux.Use(middleware.RealIP)
	s.mux.Use(middleware.Logger)
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	s.mux.Get("/trending", s.handleTrending)
	s.mux.Get("/clusters/{id}", s.handleClusterDetail)
	s.mux.Get("/search", s.handleSearch)
	s.mux.Get("/analytics", s.handleAnalytics)
	s.mux.Get("/analytics/bias-histogram", s.handleBiasHistogram)
	s.mux.Get("/users/{userID}/blindspots", s.handleListBlindspots)
	s.mux.Delete("/blindspots/{id}", s.handleDismissBlindspot)
	s.mux.Post("/ratings", s.handleUpsertRating)

	return s
}

// ServeHTTP makes Server an http.Handler directly, matching the pattern
// the teacher's cmd/main.go already expects of its API value.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("api: encoding response failed")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps a store error to the HTTP status §7's "user-visible
// failures" rule calls for: a missing row is 404, anything else the
// caller didn't already classify is 500.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
