package game

import (
	"strings"
	"unicode/utf8"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

// Engine handles the game logic. It is not safe for concurrent use: the
// server drives it from a single goroutine, which serializes every mutation.
type Engine struct {
	store    *Store
	hitOrder config.HitOrder
}

// NewEngine creates a new game engine over an existing store
func NewEngine(store *Store, hitOrder config.HitOrder) *Engine {
	return &Engine{
		store:    store,
		hitOrder: hitOrder,
	}
}

// Store exposes the underlying state store
func (e *Engine) Store() *Store {
	return e.store
}

// Connect bootstraps a freshly connected client with the active buildings
func (e *Engine) Connect(id string) []Outbound {
	buildings := e.store.Buildings()
	payload := types.BuildingsPayload{Buildings: make([]types.Building, 0, len(buildings))}
	for _, building := range buildings {
		payload.Buildings = append(payload.Buildings, *building)
	}
	return []Outbound{newOutbound(types.MsgTypeBuildings, payload, Only(id))}
}

// Join adds or refreshes the player behind a connection
func (e *Engine) Join(id string, payload types.JoinPayload) []Outbound {
	spawn := SpawnPoint()
	position := types.Vector3{
		X: valueOr(payload.X, spawn.X),
		Y: valueOr(payload.Y, spawn.Y),
		Z: valueOr(payload.Z, spawn.Z),
	}
	rotation := valueOr(payload.Rotation, 0)
	if !position.IsFinite() || !types.IsFiniteFloat(rotation) {
		return nil
	}

	player, exists := e.store.Player(id)
	if !exists {
		player = &types.Player{ID: id, HP: config.PlayerMaxHP}
	}
	player.Name = sanitizeName(payload.Name)
	player.Position = position
	player.Rotation = rotation
	e.store.AddPlayer(player)

	current := types.CurrentPlayersPayload{Players: make(map[string]types.PlayerData, e.store.PlayerCount())}
	for _, p := range e.store.Players() {
		current.Players[p.ID] = p.Data()
	}

	return []Outbound{
		newOutbound(types.MsgTypeCurrentPlayers, current, Only(id)),
		newOutbound(types.MsgTypeNewPlayer, types.PlayerMovedPayload{ID: id, Data: player.Data()}, AllExcept(id)),
	}
}

// Move applies a movement update from a joined player
func (e *Engine) Move(id string, payload types.MovePayload) []Outbound {
	player, exists := e.store.Player(id)
	if !exists {
		return nil
	}
	position := payload.Position()
	if !position.IsFinite() || !types.IsFiniteFloat(payload.Rotation) {
		return nil
	}

	player.Position = position
	player.Rotation = payload.Rotation

	return []Outbound{
		newOutbound(types.MsgTypePlayerMoved, types.PlayerMovedPayload{ID: id, Data: player.Data()}, AllExcept(id)),
	}
}

// Shoot resolves a shot fired by a joined player
func (e *Engine) Shoot(id string, payload types.ShotPayload) (Outcome, []Outbound) {
	if _, exists := e.store.Player(id); !exists {
		return Outcome{}, nil
	}
	shot := types.Shot{
		ShooterID: id,
		Origin:    payload.Pos,
		Direction: payload.Dir,
	}
	return ResolveShot(e.store, shot, e.hitOrder)
}

// Saber relays a melee swing to the other clients. It deals no damage.
func (e *Engine) Saber(id string, payload types.SaberPayload) []Outbound {
	if _, exists := e.store.Player(id); !exists {
		return nil
	}
	if !payload.Pos.IsFinite() {
		return nil
	}
	dir, ok := payload.Dir.Normalize()
	if !ok {
		return nil
	}

	return []Outbound{
		newOutbound(types.MsgTypeSaber, types.SaberEventPayload{ID: id, Pos: payload.Pos, Dir: dir}, AllExcept(id)),
	}
}

// Disconnect removes the player behind a closed connection
func (e *Engine) Disconnect(id string) []Outbound {
	if !e.store.RemovePlayer(id) {
		return nil
	}
	return []Outbound{
		newOutbound(types.MsgTypePlayerDisconnected, types.PlayerDisconnectedPayload{ID: id}, AllExcept(id)),
	}
}

// PlayerName returns the display name of a joined player
func (e *Engine) PlayerName(id string) (string, bool) {
	player, exists := e.store.Player(id)
	if !exists {
		return "", false
	}
	return player.Name, true
}

// Snapshot is a detached copy of the world for read-only consumers
type Snapshot struct {
	Players   []types.Player   `json:"players"`
	Buildings []types.Building `json:"buildings"`
}

func (e *Engine) Snapshot() Snapshot {
	snapshot := Snapshot{
		Players:   make([]types.Player, 0, e.store.PlayerCount()),
		Buildings: make([]types.Building, 0, e.store.BuildingCount()),
	}
	for _, player := range e.store.Players() {
		snapshot.Players = append(snapshot.Players, *player)
	}
	for _, building := range e.store.Buildings() {
		snapshot.Buildings = append(snapshot.Buildings, *building)
	}
	return snapshot
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > config.MaxNameLength {
		name = string([]rune(name)[:config.MaxNameLength])
	}
	if name == "" {
		return config.DefaultName
	}
	return name
}

func valueOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}
