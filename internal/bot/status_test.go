package bot

import (
	"testing"
)

func TestBuildStatusSortsAndTruncatesEntities(t *testing.T) {
	st := State{
		Position: Vec3{X: 0, Y: 64, Z: 0},
		Entities: []Entity{
			{Type: "mob", Name: "zombie", Position: Vec3{X: 12, Y: 64, Z: 0}},
			{Type: "player", Username: "Steve", Position: Vec3{X: 3, Y: 64, Z: 0}},
			{Type: "mob", Name: "creeper", Position: Vec3{X: 47, Y: 64, Z: 0}},
			{Type: "mob", Name: "skeleton", Position: Vec3{X: 0, Y: 64, Z: 3}},
		},
	}
	got := buildStatus(true, st)
	if len(got.NearbyEntities) != 4 {
		t.Fatalf("entities: got %d, want 4", len(got.NearbyEntities))
	}
	for i := 1; i < len(got.NearbyEntities); i++ {
		if got.NearbyEntities[i-1].Distance > got.NearbyEntities[i].Distance {
			t.Fatalf("entities not sorted by distance: %+v", got.NearbyEntities)
		}
	}
	if got.NearbyEntities[len(got.NearbyEntities)-1].Name != "creeper" {
		t.Fatalf("farthest entity: got %+v", got.NearbyEntities)
	}

	// Past the cap, only the ten closest survive.
	st.Entities = nil
	for i := 0; i < 15; i++ {
		st.Entities = append(st.Entities, Entity{
			Type:     "mob",
			Name:     "zombie",
			Position: Vec3{X: float64(i + 1), Y: 64, Z: 0},
		})
	}
	got = buildStatus(true, st)
	if len(got.NearbyEntities) != maxNearbyEntities {
		t.Fatalf("entities: got %d, want %d", len(got.NearbyEntities), maxNearbyEntities)
	}
	if got.NearbyEntities[9].Distance != 10 {
		t.Fatalf("tenth entity distance: got %d, want 10", got.NearbyEntities[9].Distance)
	}
}

func TestBuildStatusFiltersNonMobEntities(t *testing.T) {
	st := State{
		Entities: []Entity{
			{Type: "object", Name: "arrow", Position: Vec3{X: 1}},
			{Type: "mob", Name: "cow", Position: Vec3{X: 2}},
			{Type: "orb", Name: "xp", Position: Vec3{X: 3}},
		},
	}
	got := buildStatus(true, st)
	if len(got.NearbyEntities) != 1 || got.NearbyEntities[0].Name != "cow" {
		t.Fatalf("filtered entities: got %+v", got.NearbyEntities)
	}
}

func TestBuildStatusNamePrecedence(t *testing.T) {
	cases := []struct {
		e    Entity
		want string
	}{
		{Entity{Type: "player", Username: "Steve", Name: "steve_entity", DisplayName: "Steve!"}, "Steve"},
		{Entity{Type: "mob", Name: "zombie", DisplayName: "Zombie"}, "zombie"},
		{Entity{Type: "mob", DisplayName: "Wither Boss"}, "Wither Boss"},
		{Entity{Type: "mob"}, "mob"},
	}
	for _, c := range cases {
		st := State{Entities: []Entity{c.e}}
		got := buildStatus(true, st)
		if got.NearbyEntities[0].Name != c.want {
			t.Fatalf("entity name for %+v: got %q, want %q", c.e, got.NearbyEntities[0].Name, c.want)
		}
	}
}

func TestBuildStatusFloorsPositionAndDistance(t *testing.T) {
	st := State{
		Position: Vec3{X: 10.9, Y: 64.2, Z: -3.7},
		Entities: []Entity{
			{Type: "mob", Name: "pig", Position: Vec3{X: 10.9, Y: 64.2, Z: -0.2}},
		},
	}
	got := buildStatus(true, st)
	if got.Position.X != 10 || got.Position.Y != 64 || got.Position.Z != -4 {
		t.Fatalf("position: got %+v", got.Position)
	}
	if got.NearbyEntities[0].Distance != 3 {
		t.Fatalf("distance: got %d, want 3", got.NearbyEntities[0].Distance)
	}
}

func TestBuildStatusDefaultsDimension(t *testing.T) {
	got := buildStatus(true, State{})
	if got.Dimension != "Overworld" {
		t.Fatalf("dimension: got %q", got.Dimension)
	}
	got = buildStatus(true, State{Dimension: "the_nether"})
	if got.Dimension != "the_nether" {
		t.Fatalf("dimension: got %q", got.Dimension)
	}
}

func TestEmptyStatusHasNonNilSlices(t *testing.T) {
	st := emptyStatus()
	if st.Connected {
		t.Fatal("empty status must be disconnected")
	}
	if st.Inventory == nil || st.NearbyEntities == nil {
		t.Fatal("empty status slices must be non-nil so they encode as [] not null")
	}
}
