package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/besuhoff/skyline-blaster-go/internal/game"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

// WorldQuerier runs read-only functions against the live engine
type WorldQuerier interface {
	Query(ctx context.Context, fn func(*game.Engine)) error
}

// WorldHandler serves a snapshot of the running world
type WorldHandler struct {
	world WorldQuerier
}

func NewWorldHandler(world WorldQuerier) *WorldHandler {
	return &WorldHandler{world: world}
}

// WorldResponse is the body of GET /api/v1/world
type WorldResponse struct {
	PlayerCount int              `json:"player_count"`
	Players     []types.Player   `json:"players"`
	Buildings   []types.Building `json:"buildings"`
}

func (h *WorldHandler) HandleGetWorld(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var snapshot game.Snapshot
	if err := h.world.Query(r.Context(), func(engine *game.Engine) {
		snapshot = engine.Snapshot()
	}); err != nil {
		slog.Warn("failed to query world", "error", err)
		http.Error(w, "World unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(WorldResponse{
		PlayerCount: len(snapshot.Players),
		Players:     snapshot.Players,
		Buildings:   snapshot.Buildings,
	})
}

// HandleHealth reports liveness
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
