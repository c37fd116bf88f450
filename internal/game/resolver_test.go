package game

import (
	"math"
	"testing"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

func newTestStore(buildings ...*types.Building) *Store {
	store := NewStore()
	for _, building := range buildings {
		store.AddBuilding(building)
	}
	return store
}

func addPlayer(store *Store, id string, x, y, z float64) *types.Player {
	player := &types.Player{ID: id, Name: id, Position: types.Vector3{X: x, Y: y, Z: z}, HP: config.PlayerMaxHP}
	store.AddPlayer(player)
	return player
}

func shotFrom(shooter string, ox, oy, oz, dx, dy, dz float64) types.Shot {
	return types.Shot{
		ShooterID: shooter,
		Origin:    types.Vector3{X: ox, Y: oy, Z: oz},
		Direction: types.Vector3{X: dx, Y: dy, Z: dz},
	}
}

func messagesOfType(messages []Outbound, msgType types.MessageType) []Outbound {
	var found []Outbound
	for _, msg := range messages {
		if msg.Message.Type == msgType {
			found = append(found, msg)
		}
	}
	return found
}

func TestResolveShotHitsBuildingBeforePlayerBehindIt(t *testing.T) {
	building := &types.Building{ID: 1, X: 0, Z: 0, Width: 10, Depth: 10, Height: 50, HP: 200}
	store := newTestStore(building)
	addPlayer(store, "shooter", 0, 1, 100)
	victim := addPlayer(store, "victim", 0, 1, -20)

	for _, order := range []config.HitOrder{config.HitOrderNearest, config.HitOrderOrdered} {
		t.Run(string(order), func(t *testing.T) {
			building.HP = 200
			outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 100, 0, 0, -1), order)

			if outcome.Kind != HitBuilding || outcome.BuildingID != 1 {
				t.Fatalf("expected building 1 to be hit, got %+v", outcome)
			}
			if math.Abs(outcome.Distance-95) > 1e-9 {
				t.Errorf("expected entry distance 95, got %v", outcome.Distance)
			}

			hits := messagesOfType(messages, types.MsgTypeBuildingHit)
			if len(hits) != 1 {
				t.Fatalf("expected exactly one buildingHit, got %d", len(hits))
			}
			payload := hits[0].Message.Payload.(types.BuildingHitPayload)
			if payload.ID != 1 || payload.HP != 200-config.BuildingDamage {
				t.Errorf("unexpected buildingHit payload: %+v", payload)
			}
			if len(messagesOfType(messages, types.MsgTypePlayerHit)) != 0 {
				t.Error("player behind the building must not be hit")
			}
			if victim.HP != config.PlayerMaxHP {
				t.Errorf("victim hp changed to %d", victim.HP)
			}
		})
	}
}

func TestResolveShotHitsPlayerInFrontOfBuilding(t *testing.T) {
	tests := []struct {
		name       string
		order      config.HitOrder
		wantKind   HitKind
		wantDist   float64
		wantHP     int
		wantBldgHP int
	}{
		{name: "nearest", order: config.HitOrderNearest, wantKind: HitPlayer, wantDist: 5, wantHP: config.PlayerMaxHP - config.PlayerDamage, wantBldgHP: 300},
		{name: "ordered", order: config.HitOrderOrdered, wantKind: HitBuilding, wantDist: 450, wantHP: config.PlayerMaxHP, wantBldgHP: 300 - config.BuildingDamage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			building := &types.Building{ID: 1, X: 500, Z: 0, Width: 100, Depth: 100, Height: 50, HP: 300}
			store := newTestStore(building)
			addPlayer(store, "shooter", 0, 3, 0)
			victim := addPlayer(store, "victim", 5, 3, 0)

			outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 3, 0, 1, 0, 0), tt.order)

			if outcome.Kind != tt.wantKind {
				t.Fatalf("expected kind %v, got %+v", tt.wantKind, outcome)
			}
			if math.Abs(outcome.Distance-tt.wantDist) > 1e-9 {
				t.Errorf("distance = %v, want %v", outcome.Distance, tt.wantDist)
			}
			if victim.HP != tt.wantHP {
				t.Errorf("victim hp = %d, want %d", victim.HP, tt.wantHP)
			}
			if building.HP != tt.wantBldgHP {
				t.Errorf("building hp = %d, want %d", building.HP, tt.wantBldgHP)
			}
			if got := len(messagesOfType(messages, types.MsgTypePlayerHit)) + len(messagesOfType(messages, types.MsgTypeBuildingHit)); got != 1 {
				t.Errorf("expected exactly one hit event, got %d", got)
			}
		})
	}
}

func TestResolveShotTieGoesToBuilding(t *testing.T) {
	// The victim stands exactly on the face the ray enters through
	building := &types.Building{ID: 1, X: 10, Z: 0, Width: 10, Depth: 10, Height: 50, HP: 300}
	store := newTestStore(building)
	addPlayer(store, "shooter", 0, 3, 0)
	victim := addPlayer(store, "victim", 5, 3, 0)

	outcome, _ := ResolveShot(store, shotFrom("shooter", 0, 3, 0, 1, 0, 0), config.HitOrderNearest)

	if outcome.Kind != HitBuilding || outcome.BuildingID != 1 {
		t.Fatalf("expected the building to win the tie, got %+v", outcome)
	}
	if victim.HP != config.PlayerMaxHP {
		t.Errorf("victim hp = %d", victim.HP)
	}
}

func TestResolveShotReachesAcrossCity(t *testing.T) {
	extent := config.WorldSpread*0.8 + config.BuildingMaxSize/2
	store := newTestStore()
	addPlayer(store, "shooter", -extent, 1, -extent)
	victim := addPlayer(store, "victim", extent, 1, extent)

	outcome, _ := ResolveShot(store, shotFrom("shooter", -extent, 1, -extent, 1, 0, 1), config.HitOrderNearest)

	if outcome.Kind != HitPlayer || outcome.PlayerID != "victim" {
		t.Fatalf("expected a corner-to-corner hit, got %+v", outcome)
	}
	if victim.HP != config.PlayerMaxHP-config.PlayerDamage {
		t.Errorf("victim hp = %d", victim.HP)
	}
}

func TestResolveShotDestroysBuildingInOneHit(t *testing.T) {
	building := &types.Building{ID: 7, X: 0, Z: 0, Width: 10, Depth: 10, Height: 50, HP: config.BuildingDamage}
	store := newTestStore(building)
	addPlayer(store, "shooter", 0, 1, 100)
	victim := addPlayer(store, "victim", 0, 1, -20)

	outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 100, 0, 0, -1), config.HitOrderNearest)

	if !outcome.Destroyed {
		t.Fatalf("expected building to be destroyed, got %+v", outcome)
	}
	hit := messagesOfType(messages, types.MsgTypeBuildingHit)[0].Message.Payload.(types.BuildingHitPayload)
	if hit.HP != 0 {
		t.Errorf("expected emitted hp 0, got %d", hit.HP)
	}
	destroyed := messagesOfType(messages, types.MsgTypeBuildingDestroy)
	if len(destroyed) != 1 || destroyed[0].Message.Payload.(types.BuildingDestroyPayload).ID != 7 {
		t.Fatalf("expected one buildingDestroy for 7, got %+v", destroyed)
	}
	if _, exists := store.Building(7); exists {
		t.Error("destroyed building must leave the store")
	}

	// The next shot passes through the empty lot
	outcome, _ = ResolveShot(store, shotFrom("shooter", 0, 1, 100, 0, 0, -1), config.HitOrderNearest)
	if outcome.Kind != HitPlayer || outcome.PlayerID != "victim" {
		t.Fatalf("expected victim to be hit after destruction, got %+v", outcome)
	}
	if victim.HP != config.PlayerMaxHP-config.PlayerDamage {
		t.Errorf("victim hp = %d", victim.HP)
	}
}

func TestResolveShotClampsBuildingHP(t *testing.T) {
	building := &types.Building{ID: 1, X: 0, Z: 0, Width: 10, Depth: 10, Height: 50, HP: 25}
	store := newTestStore(building)
	addPlayer(store, "shooter", 0, 1, 100)

	_, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 100, 0, 0, -1), config.HitOrderNearest)

	hit := messagesOfType(messages, types.MsgTypeBuildingHit)[0].Message.Payload.(types.BuildingHitPayload)
	if hit.HP != 0 {
		t.Errorf("expected hp clamped to 0, got %d", hit.HP)
	}
}

func TestResolveShotHitsPlayer(t *testing.T) {
	store := newTestStore()
	addPlayer(store, "shooter", 0, 1, 0)
	victim := addPlayer(store, "victim", 5, 1, 0)

	outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 1, 0, 0), config.HitOrderNearest)

	if outcome.Kind != HitPlayer || outcome.PlayerID != "victim" {
		t.Fatalf("expected victim hit, got %+v", outcome)
	}
	if math.Abs(outcome.Distance-5) > 1e-9 {
		t.Errorf("expected projection 5, got %v", outcome.Distance)
	}
	if victim.HP != config.PlayerMaxHP-config.PlayerDamage {
		t.Errorf("victim hp = %d", victim.HP)
	}
	hits := messagesOfType(messages, types.MsgTypePlayerHit)
	if len(hits) != 1 {
		t.Fatalf("expected one playerHit, got %d", len(hits))
	}
	if payload := hits[0].Message.Payload.(types.PlayerHitPayload); payload.ID != "victim" || payload.HP != victim.HP {
		t.Errorf("unexpected playerHit payload %+v", payload)
	}
}

func TestResolveShotRadiusBoundaryIsMiss(t *testing.T) {
	store := newTestStore()
	addPlayer(store, "shooter", 0, 0, 0)
	victim := addPlayer(store, "victim", 5, config.PlayerHitRadius, 0)

	for i := 0; i < 3; i++ {
		outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 0, 0, 1, 0, 0), config.HitOrderNearest)
		if outcome.Kind != HitNone {
			t.Fatalf("closest approach on the radius must miss, got %+v", outcome)
		}
		if len(messagesOfType(messages, types.MsgTypePlayerHit)) != 0 {
			t.Fatal("unexpected playerHit")
		}
	}
	if victim.HP != config.PlayerMaxHP {
		t.Errorf("victim hp = %d", victim.HP)
	}
}

func TestResolveShotKillsAndRespawns(t *testing.T) {
	store := newTestStore()
	addPlayer(store, "shooter", 0, 1, 0)
	victim := addPlayer(store, "victim", 5, 1, 0)
	victim.HP = config.PlayerDamage

	outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 1, 0, 0), config.HitOrderNearest)

	if !outcome.Killed {
		t.Fatalf("expected kill, got %+v", outcome)
	}
	if victim.HP != config.PlayerMaxHP {
		t.Errorf("respawned hp = %d, want %d", victim.HP, config.PlayerMaxHP)
	}
	if victim.Position != SpawnPoint() {
		t.Errorf("respawned at %+v, want %+v", victim.Position, SpawnPoint())
	}

	hit := messagesOfType(messages, types.MsgTypePlayerHit)[0].Message.Payload.(types.PlayerHitPayload)
	if hit.HP != 0 {
		t.Errorf("expected playerHit hp 0, got %d", hit.HP)
	}
	killed := messagesOfType(messages, types.MsgTypePlayerKilled)
	if len(killed) != 1 || killed[0].Message.Payload.(types.PlayerKilledPayload).ID != "victim" {
		t.Fatalf("expected one playerKilled, got %+v", killed)
	}
	moved := messagesOfType(messages, types.MsgTypePlayerMoved)
	if len(moved) != 1 || moved[0].Target != All() {
		t.Fatalf("expected one playerMoved to everybody, got %+v", moved)
	}
	if data := moved[0].Message.Payload.(types.PlayerMovedPayload).Data; data.HP != config.PlayerMaxHP {
		t.Errorf("playerMoved hp = %d", data.HP)
	}
}

func TestResolveShotTwoBuildingsOnOneRay(t *testing.T) {
	// id 1 is farther from the shooter than id 2
	far := &types.Building{ID: 1, X: 0, Z: -100, Width: 10, Depth: 10, Height: 50, HP: 300}
	near := &types.Building{ID: 2, X: 0, Z: 0, Width: 10, Depth: 10, Height: 50, HP: 300}

	tests := []struct {
		order  config.HitOrder
		wantID int
	}{
		{order: config.HitOrderNearest, wantID: 2},
		{order: config.HitOrderOrdered, wantID: 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			far.HP, near.HP = 300, 300
			store := newTestStore(far, near)
			addPlayer(store, "shooter", 0, 1, 100)

			outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 100, 0, 0, -1), tt.order)

			if outcome.BuildingID != tt.wantID {
				t.Fatalf("hit building %d, want %d", outcome.BuildingID, tt.wantID)
			}
			if hits := messagesOfType(messages, types.MsgTypeBuildingHit); len(hits) != 1 {
				t.Fatalf("expected one buildingHit, got %d", len(hits))
			}
			other := far
			if tt.wantID == 1 {
				other = near
			}
			if other.HP != 300 {
				t.Errorf("building %d should be untouched, hp %d", other.ID, other.HP)
			}
		})
	}
}

func TestResolveShotTwoPlayersOnOneRay(t *testing.T) {
	tests := []struct {
		order  config.HitOrder
		wantID string
	}{
		{order: config.HitOrderNearest, wantID: "near"},
		{order: config.HitOrderOrdered, wantID: "far"},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			store := newTestStore()
			addPlayer(store, "shooter", 0, 1, 0)
			addPlayer(store, "far", 20, 1, 0)
			addPlayer(store, "near", 5, 1, 0)

			outcome, _ := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 1, 0, 0), tt.order)
			if outcome.PlayerID != tt.wantID {
				t.Fatalf("hit %q, want %q", outcome.PlayerID, tt.wantID)
			}
		})
	}
}

func TestResolveShotIgnoresShooter(t *testing.T) {
	store := newTestStore()
	shooter := addPlayer(store, "shooter", 5, 1, 0)

	outcome, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 1, 0, 0), config.HitOrderNearest)

	if outcome.Kind != HitNone {
		t.Fatalf("shooter must not hit itself, got %+v", outcome)
	}
	if shooter.HP != config.PlayerMaxHP {
		t.Errorf("shooter hp = %d", shooter.HP)
	}
	if len(messages) != 1 || messages[0].Message.Type != types.MsgTypeShoot {
		t.Fatalf("expected only the shoot relay, got %+v", messages)
	}
}

func TestResolveShotRelaysShootToOthers(t *testing.T) {
	store := newTestStore()
	addPlayer(store, "shooter", 0, 1, 0)

	_, messages := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 3, 0, 4), config.HitOrderNearest)

	shoots := messagesOfType(messages, types.MsgTypeShoot)
	if len(shoots) != 1 {
		t.Fatalf("expected one shoot relay, got %d", len(shoots))
	}
	if shoots[0].Target != AllExcept("shooter") {
		t.Errorf("unexpected target %+v", shoots[0].Target)
	}
	payload := shoots[0].Message.Payload.(types.ShootEventPayload)
	if payload.ShooterID != "shooter" {
		t.Errorf("shooterId = %q", payload.ShooterID)
	}
	if math.Abs(payload.Dir.Length()-1) > 1e-12 {
		t.Errorf("relayed direction not normalized: %+v", payload.Dir)
	}
}

func TestResolveShotRejectsMalformed(t *testing.T) {
	building := &types.Building{ID: 1, X: 0, Z: 0, Width: 10, Depth: 10, Height: 50, HP: 200}

	tests := []struct {
		name string
		shot types.Shot
	}{
		{name: "zero direction", shot: shotFrom("shooter", 0, 1, 100, 0, 0, 0)},
		{name: "nan origin", shot: shotFrom("shooter", math.NaN(), 1, 100, 0, 0, -1)},
		{name: "infinite origin", shot: shotFrom("shooter", 0, math.Inf(1), 100, 0, 0, -1)},
		{name: "nan direction", shot: shotFrom("shooter", 0, 1, 100, 0, math.NaN(), -1)},
		{name: "infinite direction", shot: shotFrom("shooter", 0, 1, 100, 0, 0, math.Inf(-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			building.HP = 200
			store := newTestStore(building)
			addPlayer(store, "shooter", 0, 1, 100)

			outcome, messages := ResolveShot(store, tt.shot, config.HitOrderNearest)
			if outcome.Kind != HitNone || len(messages) != 0 {
				t.Fatalf("expected malformed shot to be dropped, got %+v %+v", outcome, messages)
			}
			if building.HP != 200 {
				t.Errorf("building hp changed to %d", building.HP)
			}
		})
	}
}

func TestResolveShotOutOfRange(t *testing.T) {
	building := &types.Building{ID: 1, X: 0, Z: -(config.ShotRange + 50), Width: 10, Depth: 10, Height: 50, HP: 200}
	store := newTestStore(building)
	addPlayer(store, "shooter", 0, 1, 0)

	outcome, _ := ResolveShot(store, shotFrom("shooter", 0, 1, 0, 0, 0, -1), config.HitOrderNearest)
	if outcome.Kind != HitNone {
		t.Fatalf("building beyond range must not be hit, got %+v", outcome)
	}
}
