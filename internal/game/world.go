package game

import (
	"math/rand"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/types"
	"github.com/besuhoff/skyline-blaster-go/internal/utils"
)

// maxPlacementAttempts bounds the retries for a building that overlaps
// another one or the spawn column.
const maxPlacementAttempts = 20

// GenerateCity creates up to count buildings from rng. Footprints never
// overlap each other or the spawn point; a building that finds no free spot
// is skipped, so ids may have gaps.
func GenerateCity(rng *rand.Rand, count int) []*types.Building {
	spread := config.WorldSpread * 0.8
	buildings := make([]*types.Building, 0, count)

	for id := 1; id <= count; id++ {
		var building *types.Building
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			candidate := &types.Building{
				ID:     id,
				Width:  randRange(rng, config.BuildingMinSize, config.BuildingMaxSize),
				Depth:  randRange(rng, config.BuildingMinSize, config.BuildingMaxSize),
				Height: randRange(rng, config.BuildingMinHeight, config.BuildingMaxHeight),
				X:      (rng.Float64()*2 - 1) * spread,
				Z:      (rng.Float64()*2 - 1) * spread,
				HP:     config.BuildingMinHP + rng.Intn(config.BuildingMaxHP-config.BuildingMinHP+1),
			}
			if candidate.ContainsXZ(config.SpawnX, config.SpawnZ, config.SpawnClearance) {
				continue
			}
			if overlapsAny(candidate, buildings) {
				continue
			}
			building = candidate
			break
		}
		if building != nil {
			buildings = append(buildings, building)
		}
	}

	return buildings
}

func overlapsAny(candidate *types.Building, buildings []*types.Building) bool {
	cMin := candidate.Min()
	for _, other := range buildings {
		oMin := other.Min()
		if utils.CheckRectCollision(cMin.X, cMin.Z, candidate.Width, candidate.Depth,
			oMin.X, oMin.Z, other.Width, other.Depth) {
			return true
		}
	}
	return false
}

func randRange(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// SpawnPoint is where new and respawned players appear
func SpawnPoint() types.Vector3 {
	return types.Vector3{X: config.SpawnX, Y: config.SpawnY, Z: config.SpawnZ}
}
