package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finsight/cache"
	"finsight/database"
	models "finsight/database/models_pkg"
	"finsight/engine"
)

// handleHealth returns the health status of the API
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleCreateGoal registers a new savings goal
func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.SavingsGoal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if goal.UserID <= 0 || goal.TargetAmount <= 0 || goal.Name == "" {
		respondWithError(w, http.StatusBadRequest, "user_id, name and a positive target_amount are required", nil)
		return
	}
	if goal.Deadline.Before(time.Now()) {
		respondWithError(w, http.StatusBadRequest, "deadline must be in the future", nil)
		return
	}

	// Reset ID to let DB assign it
	goal.ID = 0
	if goal.Status == "" {
		goal.Status = "ACTIVE"
	}

	if err := s.repo.CreateGoal(&goal); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

// handleAssessGoal runs a fresh feasibility assessment for one goal
func (s *Server) handleAssessGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := getInt64Path(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal ID", nil)
		return
	}

	assessment, err := s.eng.Assess(goalID)
	if err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			respondWithError(w, http.StatusNotFound, "Goal not found", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Assessment failed", err)
		return
	}

	s.cacheAssessment(r.Context(), assessment)
	respondJSON(w, http.StatusOK, assessment)
}

// handleGetAssessment returns the latest assessment, serving from cache when
// a fresh one exists
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	goalID, ok := getInt64Path(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal ID", nil)
		return
	}

	if s.cache != nil {
		var cached engine.Assessment
		if err := s.cache.Get(r.Context(), cache.AssessmentKey(goalID), &cached); err == nil {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	assessment, err := s.eng.Assess(goalID)
	if err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			respondWithError(w, http.StatusNotFound, "Goal not found", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Assessment failed", err)
		return
	}

	s.cacheAssessment(r.Context(), assessment)
	respondJSON(w, http.StatusOK, assessment)
}

// handleUpdateProgress records a new saved amount and re-assesses the goal
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	goalID, ok := getInt64Path(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal ID", nil)
		return
	}

	var body struct {
		CurrentAmount float64 `json:"current_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.CurrentAmount < 0 {
		respondWithError(w, http.StatusBadRequest, "current_amount cannot be negative", nil)
		return
	}

	// Drop the cached entry first so a failed re-assessment cannot leave a
	// stale result behind
	if s.cache != nil {
		_ = s.cache.Delete(r.Context(), cache.AssessmentKey(goalID))
	}

	assessment, err := s.eng.UpdateProgress(goalID, body.CurrentAmount)
	if err != nil {
		if errors.Is(err, database.ErrGoalNotFound) {
			respondWithError(w, http.StatusNotFound, "Goal not found", err)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Progress update failed", err)
		return
	}

	s.cacheAssessment(r.Context(), assessment)
	respondJSON(w, http.StatusOK, assessment)
}

// handleGetRuns returns the audit trail of recent engine runs for a goal
func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	goalID, ok := getInt64Path(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal ID", nil)
		return
	}

	minLimit, maxLimit := 1, 200
	limit := getIntParam(r, "limit", 20, &minLimit, &maxLimit)

	runs, err := s.repo.GetRecentRuns(goalID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch runs", err)
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// handleBulkAssess assesses every active goal of a user, most at-risk first
func (s *Server) handleBulkAssess(w http.ResponseWriter, r *http.Request) {
	userID, ok := getInt64Path(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	items, err := s.eng.AssessBulk(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Bulk assessment failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"count":   len(items),
		"goals":   items,
	})
}

// cacheAssessment stores the result under the goal's cache key. Best-effort.
func (s *Server) cacheAssessment(ctx context.Context, a *engine.Assessment) {
	if s.cache == nil || a == nil {
		return
	}
	_ = s.cache.Set(ctx, cache.AssessmentKey(a.GoalID), a, s.cacheTTL)
}
