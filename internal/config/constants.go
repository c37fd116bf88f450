package config

import "time"

// Combat
const (
	BuildingDamage  = 60
	PlayerDamage    = 20
	PlayerHitRadius = 0.8
	ShotRange       = 3 * WorldSpread // covers the city diagonal
	PlayerMaxHP     = 100
)

// World generation
const (
	DefaultBuildingCount = 8
	WorldSpread          = 700.0
	BuildingMinSize      = 80.0
	BuildingMaxSize      = 300.0
	BuildingMinHeight    = 80.0
	BuildingMaxHeight    = 480.0
	BuildingMinHP        = 200
	BuildingMaxHP        = 600
	SpawnClearance       = 10.0
)

// Spawn point used for new and respawned players
const (
	SpawnX = 0.0
	SpawnY = 3.0
	SpawnZ = 0.0
)

// Players
const (
	MaxNameLength = 16
	DefaultName   = "Player"
)

// Networking
const (
	DefaultMaxMessagesPerSec = 120
	WriteWait                = 10 * time.Second
	PongWait                 = 60 * time.Second
	PingPeriod               = (PongWait * 9) / 10
	MaxMessageSize           = 4096
	SendBufferSize           = 256
	InboundBufferSize        = 1024
	StatsWriteTimeout        = 5 * time.Second
	LeaderboardDefaultLimit  = 100
)

// Leaderboard scoring
const (
	KillScore     = 100
	BuildingScore = 50
)

// Auth
const (
	DevTokenTTL = 24 * time.Hour
)
