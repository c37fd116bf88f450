package types

import "github.com/besuhoff/skyline-blaster-go/internal/config"

// Player is a connected, joined client
type Player struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position Vector3 `json:"position"`
	Rotation float64 `json:"rotation"`
	HP       int     `json:"hp"`
}

// PlayerData is the wire shape of a player, flattened the way clients expect it
type PlayerData struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
	Name     string  `json:"name"`
	HP       int     `json:"hp"`
}

func (p *Player) Data() PlayerData {
	return PlayerData{
		X:        p.Position.X,
		Y:        p.Position.Y,
		Z:        p.Position.Z,
		Rotation: p.Rotation,
		Name:     p.Name,
		HP:       p.HP,
	}
}

// TakeDamage lowers hp by damage, clamped at zero, and reports whether the
// player has been eliminated.
func (p *Player) TakeDamage(damage int) bool {
	p.HP = clampHP(p.HP-damage, config.PlayerMaxHP)
	return p.HP <= 0
}

// Respawn moves the player to spawn with full health
func (p *Player) Respawn(spawn Vector3) {
	p.Position = spawn
	p.HP = config.PlayerMaxHP
}

func clampHP(hp, max int) int {
	if hp < 0 {
		return 0
	}
	if hp > max {
		return max
	}
	return hp
}
