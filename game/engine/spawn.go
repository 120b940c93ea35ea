package engine

// PlaceRandom picks a uniformly random cell not in occupied.
//
// It draws up to maxAttempts candidates by rejection sampling, which is the
// fast path on a mostly empty board. When every draw collides it scans the
// board for free cells and picks one of them, so the result is still uniform
// and the call always terminates. ok is false only when no cell is free.
func PlaceRandom(gridSize int, occupied map[Position]bool, rng Random, maxAttempts int) (Position, bool) {
	for i := 0; i < maxAttempts; i++ {
		p := Position{X: rng.Intn(gridSize), Y: rng.Intn(gridSize)}
		if !occupied[p] {
			return p, true
		}
	}

	free := make([]Position, 0, max(0, gridSize*gridSize-len(occupied)))
	for y := 0; y < gridSize; y++ {
		for x := 0; x < gridSize; x++ {
			p := Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return Position{}, false
	}
	return free[rng.Intn(len(free))], true
}

// occupiedBy builds the forbidden set for a placement
func occupiedBy(snake []Position, extra ...Position) map[Position]bool {
	occupied := make(map[Position]bool, len(snake)+len(extra))
	for _, p := range snake {
		occupied[p] = true
	}
	for _, p := range extra {
		occupied[p] = true
	}
	return occupied
}

// placeFood finds a cell for regular food, avoiding the snake and any bonus food
func placeFood(config *GameConfig, snake []Position, bonus *BonusFood, rng Random) (Position, bool) {
	var occupied map[Position]bool
	if bonus != nil {
		occupied = occupiedBy(snake, bonus.Position)
	} else {
		occupied = occupiedBy(snake)
	}
	return PlaceRandom(config.GridSize, occupied, rng, config.MaxPlacementAttempts)
}

// placeBonus finds a cell for bonus food, avoiding the snake and the regular food
func placeBonus(config *GameConfig, snake []Position, food Position, rng Random) (Position, bool) {
	return PlaceRandom(config.GridSize, occupiedBy(snake, food), rng, config.MaxPlacementAttempts)
}
