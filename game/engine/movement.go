package engine

import "time"

// SetDirection queues (dx, dy) for the next tick unless it reverses the
// direction that is currently applied. The check is against the applied
// direction, not the queued one, so two quick turns inside one tick window
// both pass and the last one wins. Queuing is allowed while paused or over.
func SetDirection(state GameState, dx, dy int) GameState {
	if !state.Direction.Opposes(dx, dy) {
		state.PendingDirection = Direction{X: dx, Y: dy}
	}
	return state
}

// TogglePause flips the pause flag. A finished game cannot be paused.
func TogglePause(state GameState) GameState {
	if state.GameOver {
		return state
	}
	state.IsPaused = !state.IsPaused
	return state
}

// Reset starts a new run from the configured defaults, keeping the high score
func Reset(config *GameConfig, state GameState) GameState {
	next := InitGameStateFromConfig(config)
	next.HighScore = state.HighScore
	return next
}

// ExpireBonus clears bonus food that has outlived the configured duration.
// It runs whether or not the game is paused.
func ExpireBonus(config *GameConfig, state GameState, now time.Time) GameState {
	if state.BonusFood == nil {
		return state
	}
	if now.Sub(state.BonusFood.SpawnTime) > config.BonusDuration() {
		state.BonusFood = nil
	}
	return state
}

// Tick advances the game by one step
func Tick(config *GameConfig, state GameState, now time.Time, rng Random) GameState {
	if state.GameOver || state.IsPaused {
		return state
	}

	next := state.Clone()
	next.Direction = next.PendingDirection
	next.Ticks++

	head := next.Head()
	newHead := Position{
		X: wrap(head.X+next.Direction.X, config.GridSize),
		Y: wrap(head.Y+next.Direction.Y, config.GridSize),
	}

	// Self collision is checked against the snake before it moves, head included
	if containsPosition(state.Snake, newHead) {
		endRun(&next)
		return next
	}

	newSnake := make([]Position, 0, len(state.Snake)+1)
	newSnake = append(newSnake, newHead)
	newSnake = append(newSnake, state.Snake...)

	foodEaten := false

	if newHead == next.Food {
		next.Score += config.FoodPoints
		foodEaten = true

		food, ok := placeFood(config, newSnake, next.BonusFood, rng)
		if !ok {
			// Board is full: nothing left to eat
			next.Snake = newSnake
			endRun(&next)
			return next
		}
		next.Food = food

		if next.BonusFood == nil && rng.Float64() < config.BonusSpawnChance {
			if pos, ok := placeBonus(config, newSnake, next.Food, rng); ok {
				next.BonusFood = &BonusFood{Position: pos, SpawnTime: now}
			}
		}
	}

	// A bonus spawned above never sits on the head, so it cannot be eaten this tick
	if next.BonusFood != nil && newHead == next.BonusFood.Position {
		next.Score += config.BonusPoints
		next.BonusFood = nil
		foodEaten = true
	}

	if !foodEaten {
		newSnake = newSnake[:len(newSnake)-1]
	}

	next.Snake = newSnake
	return next
}

// endRun marks the game over and records the high score
func endRun(state *GameState) {
	state.GameOver = true
	if state.Score > state.HighScore {
		state.HighScore = state.Score
	}
}
