package engine

import "testing"

func TestPlaceRandomRejectsOccupied(t *testing.T) {
	occupied := map[Position]bool{{X: 1, Y: 1}: true, {X: 2, Y: 2}: true}
	rng := &stubRandom{ints: []int{1, 1, 2, 2, 3, 0}}

	pos, ok := PlaceRandom(5, occupied, rng, 10)
	if !ok {
		t.Fatal("expected a free cell")
	}
	if pos != (Position{X: 3, Y: 0}) {
		t.Errorf("position = %+v, want (3,0)", pos)
	}
}

func TestPlaceRandomFallsBackToScan(t *testing.T) {
	// Every sampled draw returns (0,0), which is taken
	occupied := map[Position]bool{{X: 0, Y: 0}: true}
	rng := &stubRandom{}

	pos, ok := PlaceRandom(5, occupied, rng, 3)
	if !ok {
		t.Fatal("expected the scan to find a free cell")
	}
	if pos != (Position{X: 1, Y: 0}) {
		t.Errorf("position = %+v, want (1,0)", pos)
	}
}

func TestPlaceRandomOnlyFreeCell(t *testing.T) {
	occupied := make(map[Position]bool)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			occupied[Position{X: x, Y: y}] = true
		}
	}
	delete(occupied, Position{X: 4, Y: 3})

	pos, ok := PlaceRandom(5, occupied, NewRandom(7), 4)
	if !ok {
		t.Fatal("expected the last free cell")
	}
	if pos != (Position{X: 4, Y: 3}) {
		t.Errorf("position = %+v, want (4,3)", pos)
	}
}

func TestPlaceRandomFullBoard(t *testing.T) {
	occupied := make(map[Position]bool)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			occupied[Position{X: x, Y: y}] = true
		}
	}

	if _, ok := PlaceRandom(5, occupied, NewRandom(7), 8); ok {
		t.Error("expected no placement on a full board")
	}
}

func TestPlaceRandomStaysInGrid(t *testing.T) {
	rng := NewRandom(99)
	occupied := map[Position]bool{{X: 0, Y: 0}: true}

	for i := 0; i < 500; i++ {
		pos, ok := PlaceRandom(7, occupied, rng, DefaultMaxPlacementAttempts)
		if !ok {
			t.Fatal("unexpected placement failure")
		}
		if !inGrid(pos, 7) || occupied[pos] {
			t.Fatalf("bad placement %+v", pos)
		}
	}
}

func TestPlaceFoodAvoidsBonus(t *testing.T) {
	config := DefaultGameConfig()
	snake := []Position{{X: 1, Y: 1}}
	bonus := &BonusFood{Position: Position{X: 2, Y: 2}}
	rng := &stubRandom{ints: []int{2, 2, 1, 1, 5, 6}}

	pos, ok := placeFood(config, snake, bonus, rng)
	if !ok {
		t.Fatal("expected placement")
	}
	if pos != (Position{X: 5, Y: 6}) {
		t.Errorf("food = %+v, want (5,6)", pos)
	}
}

func TestRenderGrid(t *testing.T) {
	state := GameState{
		GridSize:  5,
		Snake:     []Position{{X: 2, Y: 2}, {X: 1, Y: 2}},
		Food:      Position{X: 4, Y: 0},
		BonusFood: &BonusFood{Position: Position{X: 0, Y: 4}},
	}

	want := []string{
		"....*",
		".....",
		".o@..",
		".....",
		"$....",
	}

	got := RenderGrid(state)
	if len(got) != len(want) {
		t.Fatalf("rows = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}
