package bot

import (
	"math"
	"sort"

	"minebuddy.app/internal/protocol"
)

// maxNearbyEntities bounds the nearby-entity list in status snapshots.
const maxNearbyEntities = 10

// buildStatus derives a BotStatus snapshot from the adapter's current state.
// The snapshot is recomputed whole on every relevant event; nothing mutates
// it incrementally.
func buildStatus(connected bool, st State) protocol.BotStatus {
	dim := st.Dimension
	if dim == "" {
		dim = "Overworld"
	}

	inv := make([]protocol.InventoryItem, 0, len(st.Inventory))
	for _, s := range st.Inventory {
		inv = append(inv, protocol.InventoryItem{Name: s.Name, Count: s.Count, Slot: s.Slot})
	}

	entities := make([]protocol.NearbyEntity, 0, len(st.Entities))
	for _, e := range st.Entities {
		if e.Type != "mob" && e.Type != "player" {
			continue
		}
		entities = append(entities, protocol.NearbyEntity{
			Name:     e.BestName(),
			Distance: int(math.Floor(distance(st.Position, e.Position))),
			Type:     e.Type,
		})
	}
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Distance < entities[j].Distance })
	if len(entities) > maxNearbyEntities {
		entities = entities[:maxNearbyEntities]
	}

	return protocol.BotStatus{
		Connected: connected,
		Position: protocol.Position{
			X: int(math.Floor(st.Position.X)),
			Y: int(math.Floor(st.Position.Y)),
			Z: int(math.Floor(st.Position.Z)),
		},
		Health:         st.Health,
		Food:           st.Food,
		Dimension:      dim,
		Inventory:      inv,
		NearbyEntities: entities,
	}
}

// emptyStatus is the snapshot reported while nothing is connected.
func emptyStatus() protocol.BotStatus {
	return protocol.BotStatus{
		Connected:      false,
		Dimension:      "Overworld",
		Inventory:      []protocol.InventoryItem{},
		NearbyEntities: []protocol.NearbyEntity{},
	}
}

func distance(a, b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
