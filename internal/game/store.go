package game

import (
	"slices"

	"github.com/besuhoff/skyline-blaster-go/internal/types"
)

// Store holds the authoritative world state. It is owned by a single
// goroutine and does no locking of its own.
type Store struct {
	players     map[string]*types.Player
	joinOrder   []string
	buildings   map[int]*types.Building
	buildingIDs []int // ascending
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		players:   make(map[string]*types.Player),
		buildings: make(map[int]*types.Building),
	}
}

// AddPlayer inserts or replaces a player. A replaced player keeps its place
// in the join order.
func (s *Store) AddPlayer(player *types.Player) {
	if _, exists := s.players[player.ID]; !exists {
		s.joinOrder = append(s.joinOrder, player.ID)
	}
	s.players[player.ID] = player
}

func (s *Store) Player(id string) (*types.Player, bool) {
	player, ok := s.players[id]
	return player, ok
}

// RemovePlayer deletes a player and reports whether it existed
func (s *Store) RemovePlayer(id string) bool {
	if _, exists := s.players[id]; !exists {
		return false
	}
	delete(s.players, id)
	if idx := slices.Index(s.joinOrder, id); idx >= 0 {
		s.joinOrder = slices.Delete(s.joinOrder, idx, idx+1)
	}
	return true
}

// Players returns the connected players in join order
func (s *Store) Players() []*types.Player {
	players := make([]*types.Player, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		players = append(players, s.players[id])
	}
	return players
}

func (s *Store) PlayerCount() int {
	return len(s.players)
}

// AddBuilding inserts or replaces a building
func (s *Store) AddBuilding(building *types.Building) {
	if _, exists := s.buildings[building.ID]; !exists {
		idx, _ := slices.BinarySearch(s.buildingIDs, building.ID)
		s.buildingIDs = slices.Insert(s.buildingIDs, idx, building.ID)
	}
	s.buildings[building.ID] = building
}

func (s *Store) Building(id int) (*types.Building, bool) {
	building, ok := s.buildings[id]
	return building, ok
}

// RemoveBuilding deletes a building and reports whether it existed
func (s *Store) RemoveBuilding(id int) bool {
	if _, exists := s.buildings[id]; !exists {
		return false
	}
	delete(s.buildings, id)
	if idx, found := slices.BinarySearch(s.buildingIDs, id); found {
		s.buildingIDs = slices.Delete(s.buildingIDs, idx, idx+1)
	}
	return true
}

// Buildings returns the active buildings in ascending id order
func (s *Store) Buildings() []*types.Building {
	buildings := make([]*types.Building, 0, len(s.buildingIDs))
	for _, id := range s.buildingIDs {
		if building := s.buildings[id]; building.IsActive() {
			buildings = append(buildings, building)
		}
	}
	return buildings
}

func (s *Store) BuildingCount() int {
	return len(s.buildings)
}
