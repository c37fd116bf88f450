package types

// MessageType represents different types of messages
type MessageType string

const (
	// Client -> Server
	MsgTypeNewPlayer      MessageType = "newPlayer"
	MsgTypePlayerMovement MessageType = "playerMovement"
	MsgTypeShoot          MessageType = "shoot"
	MsgTypeSaber          MessageType = "saber"

	// Server -> Client
	MsgTypeBuildings          MessageType = "buildings"
	MsgTypeCurrentPlayers     MessageType = "currentPlayers"
	MsgTypePlayerMoved        MessageType = "playerMoved"
	MsgTypePlayerDisconnected MessageType = "playerDisconnected"
	MsgTypeBuildingHit        MessageType = "buildingHit"
	MsgTypeBuildingDestroy    MessageType = "buildingDestroy"
	MsgTypePlayerHit          MessageType = "playerHit"
	MsgTypePlayerKilled       MessageType = "playerKilled"
)

// Message is the base message structure
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// JoinPayload announces a player. Missing coordinates fall back to the spawn point.
type JoinPayload struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Z        *float64 `json:"z,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Name     string   `json:"name"`
}

// MovePayload for movement updates
type MovePayload struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"`
}

func (m MovePayload) Position() Vector3 {
	return Vector3{X: m.X, Y: m.Y, Z: m.Z}
}

// ShotPayload for shooting. ShooterID is informational; the server uses the
// sending connection's id.
type ShotPayload struct {
	ShooterID string  `json:"shooterId,omitempty"`
	Pos       Vector3 `json:"pos"`
	Dir       Vector3 `json:"dir"`
}

// SaberPayload for the melee swing, relayed for rendering only
type SaberPayload struct {
	Pos Vector3 `json:"pos"`
	Dir Vector3 `json:"dir"`
}

// Shot is a validated shot request, consumed once by the resolver
type Shot struct {
	ShooterID string
	Origin    Vector3
	Direction Vector3
}

// BuildingsPayload bootstraps the world on connect
type BuildingsPayload struct {
	Buildings []Building `json:"buildings"`
}

// CurrentPlayersPayload is sent to a player right after it joins
type CurrentPlayersPayload struct {
	Players map[string]PlayerData `json:"players"`
}

// PlayerMovedPayload is used for newPlayer and playerMoved notifications
type PlayerMovedPayload struct {
	ID   string     `json:"id"`
	Data PlayerData `json:"data"`
}

type PlayerDisconnectedPayload struct {
	ID string `json:"id"`
}

type BuildingHitPayload struct {
	ID int `json:"id"`
	HP int `json:"hp"`
}

type BuildingDestroyPayload struct {
	ID int `json:"id"`
}

type PlayerHitPayload struct {
	ID string `json:"id"`
	HP int    `json:"hp"`
}

type PlayerKilledPayload struct {
	ID string `json:"id"`
}

// ShootEventPayload lets other clients replay a shot visually
type ShootEventPayload struct {
	ShooterID string  `json:"shooterId"`
	Pos       Vector3 `json:"pos"`
	Dir       Vector3 `json:"dir"`
}

type SaberEventPayload struct {
	ID  string  `json:"id"`
	Pos Vector3 `json:"pos"`
	Dir Vector3 `json:"dir"`
}
