package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geraldfingburke/newsloom/internal/models"
)

const (
	defaultTrendingLimit = 20
	maxTrendingLimit     = 100
	defaultSearchLimit   = 20
)

// trendingItem is one row of the trending endpoint's response: a cluster
// plus its derived coverage score, matching §4.8's canonical trending
// shape (offset/limit + minCoverage filter, resolved in §9's open
// question).
type trendingItem struct {
	Cluster  models.Cluster        `json:"cluster"`
	Coverage *models.CoverageRecord `json:"coverage,omitempty"`
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultTrendingLimit)
	if limit <= 0 || limit > maxTrendingLimit {
		limit = defaultTrendingLimit
	}
	minCoverage := queryInt(r, "minCoverage", 0)

	clusters, err := s.store.TrendingClusters(r.Context(), offset, limit, minCoverage)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	items := make([]trendingItem, 0, len(clusters))
	for _, c := range clusters {
		item := trendingItem{Cluster: c}
		if cov, err := s.store.GetCoverage(r.Context(), c.ID); err == nil {
			item.Coverage = cov
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

// clusterDetail is the cluster-detail endpoint's response: the cluster
// row, its member articles, and its coverage record.
type clusterDetail struct {
	Cluster  models.Cluster         `json:"cluster"`
	Articles []models.Article       `json:"articles"`
	Coverage *models.CoverageRecord `json:"coverage,omitempty"`
}

func (s *Server) handleClusterDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cluster, err := s.store.GetCluster(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	articles, err := s.store.ArticlesByCluster(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	detail := clusterDetail{Cluster: *cluster, Articles: articles}
	if cov, err := s.store.GetCoverage(r.Context(), id); err == nil {
		detail.Coverage = cov
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: q")
		return
	}
	limit := queryInt(r, "limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	ids, err := s.store.Index().Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	articles, err := s.store.ArticlesByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	overview, err := s.store.Analytics(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleBiasHistogram(w http.ResponseWriter, r *http.Request) {
	histogram, err := s.store.BiasHistogram(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, histogram)
}

func (s *Server) handleListBlindspots(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	blindspots, err := s.store.ListUserBlindspots(r.Context(), userID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, blindspots)
}

func (s *Server) handleDismissBlindspot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DismissBlindspot(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ratingRequest struct {
	UserEmail string `json:"user_email"`
	ArticleID string `json:"article_id"`
	Score     int    `json:"score"`
}

func (s *Server) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.UserEmail == "" || req.ArticleID == "" || req.Score < 1 || req.Score > 5 {
		writeError(w, http.StatusBadRequest, "user_email, article_id, and score (1-5) are required")
		return
	}

	user, err := s.store.GetOrCreateUser(r.Context(), uuid.NewString(), req.UserEmail)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	rating := &models.Rating{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ArticleID: req.ArticleID,
		Score:     req.Score,
	}
	if err := s.store.UpsertRating(r.Context(), rating); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rating)
}
