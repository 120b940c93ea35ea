// Command analyze plays headless games on each rule set with a greedy bot
// and prints score, length and survival statistics. It is a quick way to
// compare how generous a rule file is before putting it in front of players.
//
//	go run ./cmd/analyze --config-dir configs --games 50
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/snake-arcade/game/config"
	"github.com/wricardo/snake-arcade/game/engine"
)

// Result summarizes a batch of simulated games on one rule set
type Result struct {
	Rules     string
	Games     int
	AvgScore  float64
	AvgLength float64
	AvgTicks  float64
	BestScore int
	// TimedOut counts games still alive when the tick limit was reached
	TimedOut int
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Simulate greedy games on each rule set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing rule files"},
			&cli.BoolFlag{Name: "builtin-rules", Usage: "Use only the built-in rule sets and ignore --config-dir"},
			&cli.IntFlag{Name: "games", Value: 20, Usage: "Games per rule set"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Seed of the first game"},
			&cli.IntFlag{Name: "max-ticks", Value: 5000, Usage: "Tick limit per game"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("config-dir")
			if cmd.Bool("builtin-rules") {
				dir = ""
			}
			manager, err := config.NewManager(dir)
			if err != nil {
				return err
			}
			infos, err := manager.ListConfigs()
			if err != nil {
				return err
			}

			var results []Result
			for _, info := range infos {
				rules, err := manager.LoadConfig(info.ConfigID)
				if err != nil {
					return err
				}
				res, err := Simulate(rules, int(cmd.Int("games")), uint64(cmd.Int("seed")), int(cmd.Int("max-ticks")))
				if err != nil {
					return fmt.Errorf("%s: %w", info.ConfigID, err)
				}
				res.Rules = info.ConfigID
				results = append(results, res)
			}
			return printResults(cmd.Root().Writer, results)
		},
	}
}

func printResults(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULES\tGAMES\tAVG SCORE\tBEST\tAVG LENGTH\tAVG TICKS\tTIMED OUT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\t%.1f\t%.0f\t%d\n",
			r.Rules, r.Games, r.AvgScore, r.BestScore, r.AvgLength, r.AvgTicks, r.TimedOut)
	}
	return tw.Flush()
}

// Simulate plays games with the greedy bot. Game i is seeded with seed+i and
// runs on a simulated clock that advances one tick period per move, so bonus
// food expires as it would in real play.
func Simulate(rules *engine.GameConfig, games int, seed uint64, maxTicks int) (Result, error) {
	res := Result{Rules: rules.Name, Games: games}
	if games <= 0 {
		return res, nil
	}

	var totalScore, totalLength, totalTicks int
	for i := 0; i < games; i++ {
		now := time.Unix(0, 0)
		eng, err := engine.NewEngine(rules,
			engine.WithRandom(engine.NewRandom(seed+uint64(i))),
			engine.WithClock(func() time.Time { return now }),
		)
		if err != nil {
			return res, err
		}

		state := eng.GetState()
		for t := 0; t < maxTicks && !state.GameOver; t++ {
			d := nextDirection(state)
			eng.SetDirection(d.X, d.Y)
			now = now.Add(rules.GameSpeed())
			eng.Tick()
			state = eng.ExpireBonus()
		}

		if !state.GameOver {
			res.TimedOut++
		}
		if state.Score > res.BestScore {
			res.BestScore = state.Score
		}
		totalScore += state.Score
		totalLength += len(state.Snake)
		totalTicks += int(state.Ticks)
	}

	n := float64(games)
	res.AvgScore = float64(totalScore) / n
	res.AvgLength = float64(totalLength) / n
	res.AvgTicks = float64(totalTicks) / n
	return res, nil
}

// nextDirection steers toward the nearest food without stepping onto the
// body. When every move is blocked it keeps the current heading.
func nextDirection(state engine.GameState) engine.Direction {
	head := state.Head()
	target := state.Food
	if state.BonusFood != nil && distance(head, state.BonusFood.Position, state.GridSize) < distance(head, target, state.GridSize) {
		target = state.BonusFood.Position
	}

	// the tail moves away this tick unless food is eaten
	blocked := make(map[engine.Position]bool, len(state.Snake))
	for _, p := range state.Snake[:len(state.Snake)-1] {
		blocked[p] = true
	}

	best := state.Direction
	bestDist := -1
	for _, d := range []engine.Direction{engine.Up, engine.Right, engine.Down, engine.Left} {
		if state.Direction.Opposes(d.X, d.Y) {
			continue
		}
		next := step(head, d, state.GridSize)
		if blocked[next] {
			continue
		}
		if dist := distance(next, target, state.GridSize); bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func step(p engine.Position, d engine.Direction, size int) engine.Position {
	return engine.Position{
		X: (p.X + d.X + size) % size,
		Y: (p.Y + d.Y + size) % size,
	}
}

// distance is the Manhattan distance on a wrapping board
func distance(a, b engine.Position, size int) int {
	return axis(a.X, b.X, size) + axis(a.Y, b.Y, size)
}

func axis(a, b, size int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if size-d < d {
		return size - d
	}
	return d
}
