package service

import (
	"testing"
	"time"

	"github.com/wricardo/snake-arcade/game/engine"
)

func eventTypes(events []GameEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestDiffEvents(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := engine.GameState{
		GridSize:  20,
		Snake:     []engine.Position{{X: 10, Y: 10}},
		Direction: engine.Right,
		Food:      engine.Position{X: 11, Y: 10},
		Ticks:     3,
	}

	tests := []struct {
		name   string
		mutate func(prev, next *engine.GameState)
		want   []string
	}{
		{"no change", func(prev, next *engine.GameState) {}, nil},
		{"food eaten", func(prev, next *engine.GameState) {
			next.Snake = []engine.Position{{X: 11, Y: 10}, {X: 10, Y: 10}}
			next.Food = engine.Position{X: 3, Y: 3}
			next.Score = 10
			next.Ticks = 4
		}, []string{EventFoodEaten}},
		{"food eaten with bonus spawn", func(prev, next *engine.GameState) {
			next.Snake = []engine.Position{{X: 11, Y: 10}, {X: 10, Y: 10}}
			next.Food = engine.Position{X: 3, Y: 3}
			next.BonusFood = &engine.BonusFood{Position: engine.Position{X: 5, Y: 5}, SpawnTime: now}
			next.Ticks = 4
		}, []string{EventFoodEaten, EventBonusSpawned}},
		{"bonus eaten", func(prev, next *engine.GameState) {
			prev.BonusFood = &engine.BonusFood{Position: engine.Position{X: 10, Y: 9}, SpawnTime: now}
			next.Snake = []engine.Position{{X: 10, Y: 9}, {X: 10, Y: 10}}
			next.Score = 50
			next.Ticks = 4
		}, []string{EventBonusEaten}},
		{"bonus expired", func(prev, next *engine.GameState) {
			prev.BonusFood = &engine.BonusFood{Position: engine.Position{X: 1, Y: 1}, SpawnTime: now}
		}, []string{EventBonusExpired}},
		{"paused", func(prev, next *engine.GameState) {
			next.IsPaused = true
		}, []string{EventPaused}},
		{"resumed", func(prev, next *engine.GameState) {
			prev.IsPaused = true
		}, []string{EventResumed}},
		{"game over with high score", func(prev, next *engine.GameState) {
			prev.Score = 30
			next.Score = 30
			next.GameOver = true
			next.HighScore = 30
			next.Ticks = 4
		}, []string{EventGameOver, EventHighScore}},
		{"game over without high score", func(prev, next *engine.GameState) {
			prev.HighScore = 100
			next.HighScore = 100
			next.GameOver = true
			next.Ticks = 4
		}, []string{EventGameOver}},
		{"reset", func(prev, next *engine.GameState) {
			prev.GameOver = true
			next.Ticks = 0
		}, []string{EventReset}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := base.Clone()
			next := base.Clone()
			tt.mutate(&prev, &next)

			got := eventTypes(DiffEvents(prev, next, now))
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("events = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
