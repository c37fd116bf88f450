package game

import (
	"math"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
	"github.com/besuhoff/skyline-blaster-go/internal/utils"
)

// HitKind tells what a shot ended up damaging
type HitKind int

const (
	HitNone HitKind = iota
	HitBuilding
	HitPlayer
)

// Outcome summarizes a resolved shot
type Outcome struct {
	Kind       HitKind
	BuildingID int
	PlayerID   string
	Distance   float64
	Destroyed  bool
	Killed     bool
}

// ResolveShot validates a shot against the world, applies damage to at most
// one building or player and returns the messages to broadcast. With
// HitOrderNearest the closer of the nearest building and the nearest player
// takes the hit, a building winning a tie. With HitOrderOrdered any building
// on the ray wins and players are tested only when no building is hit.
// Invalid shots change nothing and produce no messages.
func ResolveShot(store *Store, shot types.Shot, order config.HitOrder) (Outcome, []Outbound) {
	if !shot.Origin.IsFinite() {
		return Outcome{}, nil
	}
	dir, ok := shot.Direction.Normalize()
	if !ok {
		return Outcome{}, nil
	}
	shot.Direction = dir

	var outcome Outcome
	var messages []Outbound

	building, buildingDist := pickBuilding(store, shot, order)
	var player *types.Player
	playerDist := math.Inf(1)
	if building == nil || order != config.HitOrderOrdered {
		player, playerDist = pickPlayer(store, shot, order)
	}

	switch {
	case building != nil && (player == nil || buildingDist <= playerDist):
		outcome = Outcome{Kind: HitBuilding, BuildingID: building.ID, Distance: buildingDist}
		messages = append(messages, damageBuilding(store, building, &outcome)...)
	case player != nil:
		outcome = Outcome{Kind: HitPlayer, PlayerID: player.ID, Distance: playerDist}
		messages = append(messages, damagePlayer(player, &outcome)...)
	}

	messages = append(messages, newOutbound(types.MsgTypeShoot, types.ShootEventPayload{
		ShooterID: shot.ShooterID,
		Pos:       shot.Origin,
		Dir:       shot.Direction,
	}, AllExcept(shot.ShooterID)))

	return outcome, messages
}

func pickBuilding(store *Store, shot types.Shot, order config.HitOrder) (*types.Building, float64) {
	var best *types.Building
	bestT := math.Inf(1)

	for _, building := range store.Buildings() {
		tEnter, hit := utils.RayAABB(shot.Origin, shot.Direction, building.Min(), building.Max(), config.ShotRange)
		if !hit {
			continue
		}
		if order == config.HitOrderOrdered {
			return building, tEnter
		}
		if tEnter < bestT {
			best, bestT = building, tEnter
		}
	}

	return best, bestT
}

func pickPlayer(store *Store, shot types.Shot, order config.HitOrder) (*types.Player, float64) {
	var best *types.Player
	bestT := math.Inf(1)

	for _, player := range store.Players() {
		if player.ID == shot.ShooterID {
			continue
		}
		tProj, hit := utils.RayPoint(shot.Origin, shot.Direction, player.Position, config.PlayerHitRadius, config.ShotRange)
		if !hit {
			continue
		}
		if order == config.HitOrderOrdered {
			return player, tProj
		}
		if tProj < bestT {
			best, bestT = player, tProj
		}
	}

	return best, bestT
}

func damageBuilding(store *Store, building *types.Building, outcome *Outcome) []Outbound {
	destroyed := building.TakeDamage(config.BuildingDamage)
	messages := []Outbound{
		newOutbound(types.MsgTypeBuildingHit, types.BuildingHitPayload{ID: building.ID, HP: building.HP}, All()),
	}

	if destroyed {
		store.RemoveBuilding(building.ID)
		outcome.Destroyed = true
		messages = append(messages,
			newOutbound(types.MsgTypeBuildingDestroy, types.BuildingDestroyPayload{ID: building.ID}, All()))
	}
	return messages
}

func damagePlayer(player *types.Player, outcome *Outcome) []Outbound {
	killed := player.TakeDamage(config.PlayerDamage)
	messages := []Outbound{
		newOutbound(types.MsgTypePlayerHit, types.PlayerHitPayload{ID: player.ID, HP: player.HP}, All()),
	}

	if killed {
		player.Respawn(SpawnPoint())
		outcome.Killed = true
		messages = append(messages,
			newOutbound(types.MsgTypePlayerKilled, types.PlayerKilledPayload{ID: player.ID}, All()),
			newOutbound(types.MsgTypePlayerMoved, types.PlayerMovedPayload{ID: player.ID, Data: player.Data()}, All()),
		)
	}
	return messages
}
