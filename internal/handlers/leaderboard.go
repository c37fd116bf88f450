package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/db"
)

const maxLeaderboardLimit = 1000

// LeaderboardHandler handles leaderboard-related HTTP requests
type LeaderboardHandler struct {
	recorder db.Recorder
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(recorder db.Recorder) *LeaderboardHandler {
	if recorder == nil {
		recorder = db.NopRecorder{}
	}
	return &LeaderboardHandler{recorder: recorder}
}

// HandleGetLeaderboard returns the top entries by score
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := config.LeaderboardDefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		val, err := strconv.Atoi(limitStr)
		if err != nil || val <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(val, maxLeaderboardLimit)
	}

	entries, err := h.recorder.TopScores(r.Context(), limit)
	if err != nil {
		slog.Warn("failed to fetch leaderboard", "error", err)
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
