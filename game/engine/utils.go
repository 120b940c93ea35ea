package engine

import (
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

// Random is the source of randomness used for spawning.
// *rand.Rand from golang.org/x/exp/rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// NewRandom returns a PCG-backed source. A zero seed is replaced with the current time.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// wrap maps v into [0, size)
func wrap(v, size int) int {
	return ((v % size) + size) % size
}

// containsPosition reports whether p is one of the segments
func containsPosition(segments []Position, p Position) bool {
	for _, s := range segments {
		if s == p {
			return true
		}
	}
	return false
}

// RenderGrid draws the board as text rows.
// '@' head, 'o' body, '*' food, '$' bonus food, '.' empty.
func RenderGrid(state GameState) []string {
	size := state.GridSize
	if size <= 0 {
		return nil
	}

	cells := make([][]byte, size)
	for y := range cells {
		cells[y] = []byte(strings.Repeat(".", size))
	}

	set := func(p Position, ch byte) {
		if inGrid(p, size) {
			cells[p.Y][p.X] = ch
		}
	}

	set(state.Food, '*')
	if state.BonusFood != nil {
		set(state.BonusFood.Position, '$')
	}
	for i := len(state.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			set(state.Snake[i], '@')
		} else {
			set(state.Snake[i], 'o')
		}
	}

	rows := make([]string, size)
	for y := range cells {
		rows[y] = string(cells[y])
	}
	return rows
}
