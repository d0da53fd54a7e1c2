// Package http implements the REST API for Plat Pursuit.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/HuntedCode/plat-pursuit/internal/application/command"
	"github.com/HuntedCode/plat-pursuit/internal/application/query"
	"github.com/HuntedCode/plat-pursuit/internal/domain/profile"
	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"
	"github.com/HuntedCode/plat-pursuit/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Plat Pursuit API",
		"version":     "v1",
		"description": "REST API for Plat Pursuit - trophy progression, badges and leaderboards",
		"endpoints": map[string]string{
			"health":       "/health",
			"leaderboards": "/api/v1/leaderboards/{kind}",
			"progress":     "/api/v1/profiles/{id}/progress",
			"timeline":     "/api/v1/profiles/{id}/timeline",
			"ratings":      "/api/v1/concepts/{id}/ratings",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboards/{kind}
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	q := query.GetLeaderboardQuery{
		Kind:       r.PathValue("kind"),
		SeriesSlug: getQueryParam(r, "series", ""),
		ProfileID:  getQueryParam(r, "profile_id", ""),
		Page:       getQueryParamInt(r, "page", 1),
		PageSize:   getQueryParamInt(r, "page_size", query.DefaultPageSize),
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), q)
	if err != nil {
		if errors.Is(err, shared.ErrValidation) {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		s.logger.Error("failed to get leaderboard", logger.Err(err), logger.String("kind", q.Kind))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to get leaderboard")
		return
	}

	meta := &ResponseMeta{
		TotalCount: result.TotalEntries,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProfileProgress handles GET /api/v1/profiles/{id}/progress
func (s *Server) handleGetProfileProgress(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("id")
	if profileID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Profile ID is required")
		return
	}

	if s.deps.GetProfileProgressHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	q := query.GetProfileProgressQuery{ProfileID: profileID}

	result, err := s.deps.GetProfileProgressHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get profile progress", logger.Err(err), logger.ProfileID(profileID))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to get profile progress")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetTimeline handles GET /api/v1/profiles/{id}/timeline
func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("id")
	if profileID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Profile ID is required")
		return
	}

	if s.deps.GetTimelineHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Timeline handler not configured")
		return
	}

	q := query.GetTimelineQuery{
		ProfileID: profileID,
		MaxEvents: getQueryParamInt(r, "max_events", query.DefaultMaxTimelineEvents),
		SkipCache: getQueryParamBool(r, "refresh"),
	}

	result, err := s.deps.GetTimelineHandler.Handle(r.Context(), q)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		s.logger.Error("failed to get timeline", logger.Err(err), logger.ProfileID(profileID))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to get timeline")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCheckAwards handles POST /api/v1/profiles/{id}/awards/check
// Used by the sync pipeline after a trophy import completes.
func (s *Server) handleCheckAwards(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("id")
	if profileID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Profile ID is required")
		return
	}

	if s.deps.CheckAwardsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Award handler not configured")
		return
	}

	cmd := command.CheckAwardsCommand{ProfileID: profileID}

	result, err := s.deps.CheckAwardsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to check awards", logger.Err(err), logger.ProfileID(profileID))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to check awards")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id":       result.ProfileID,
		"milestone_awards": len(result.MilestoneAwards),
		"badge_awards":     len(result.BadgeAwards),
		"events_published": result.EventsPublished,
		"checked_at":       result.CheckedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RATING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetConceptAverages handles GET /api/v1/concepts/{id}/ratings
func (s *Server) handleGetConceptAverages(w http.ResponseWriter, r *http.Request) {
	conceptID := r.PathValue("id")
	if conceptID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Concept ID is required")
		return
	}

	if s.deps.GetConceptAveragesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rating handler not configured")
		return
	}

	q := query.GetConceptAveragesQuery{
		ConceptID: conceptID,
		GroupID:   getQueryParam(r, "group", ""),
	}

	result, err := s.deps.GetConceptAveragesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get concept averages", logger.Err(err), logger.ConceptID(conceptID))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to get concept averages")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// submitRatingRequest is the JSON body of POST /api/v1/ratings.
type submitRatingRequest struct {
	ProfileID  string  `json:"profile_id"`
	ConceptID  string  `json:"concept_id"`
	GroupID    string  `json:"group_id,omitempty"`
	Difficulty int     `json:"difficulty"`
	Grindiness int     `json:"grindiness"`
	Fun        int     `json:"fun"`
	Overall    int     `json:"overall"`
	Hours      float64 `json:"hours"`
}

// handleSubmitRating handles POST /api/v1/ratings
func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	if s.deps.SubmitRatingHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rating handler not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req submitRatingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return
	}

	cmd := command.SubmitRatingCommand{
		ProfileID:  req.ProfileID,
		ConceptID:  req.ConceptID,
		GroupID:    req.GroupID,
		Difficulty: req.Difficulty,
		Grindiness: req.Grindiness,
		Fun:        req.Fun,
		Overall:    req.Overall,
		Hours:      req.Hours,
	}

	result, err := s.deps.SubmitRatingHandler.Handle(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, shared.ErrValidation) {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		s.logger.Error("failed to submit rating", logger.Err(err), logger.ConceptID(req.ConceptID))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to submit rating")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
