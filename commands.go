package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/snake-arcade/game/config"
	"github.com/wricardo/snake-arcade/game/driver"
	"github.com/wricardo/snake-arcade/game/engine"
	"github.com/wricardo/snake-arcade/transport/terminal"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Play a local game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rules",
				Value: config.DefaultConfigName,
				Usage: "Rule set to play",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Random seed for food placement (0 picks one from the clock)",
			},
		},
		Action: runTUI,
	}
}

// runTUI plays one local session on a tcell screen
func runTUI(ctx context.Context, cmd *cli.Command) error {
	configs, err := config.NewManager(configDir(cmd))
	if err != nil {
		return err
	}
	rules, err := configs.LoadConfig(cmd.String("rules"))
	if err != nil {
		return fmt.Errorf("rules %q: %w", cmd.String("rules"), err)
	}

	eng, err := engine.NewEngine(rules, engine.WithRandom(engine.NewRandom(uint64(cmd.Int("seed")))))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// The screen owns the terminal now
	log.Logger = log.Output(io.Discard)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := driver.New(eng, driver.WithName("tui"))
	go loop.Run(ctx)

	err = terminal.New(screen, loop, rules.Name).Run(ctx)
	if errors.Is(err, driver.ErrStopped) && ctx.Err() != nil {
		return nil
	}
	return err
}

func configsCommand() *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "Inspect and manage rule files",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List available rule sets",
				Action: listConfigs,
			},
			{
				Name:      "validate",
				Usage:     "Validate rule files",
				ArgsUsage: "FILE...",
				Action:    validateConfigs,
			},
			{
				Name:  "init",
				Usage: "Write the built-in rule sets into the config directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing files",
					},
				},
				Action: initConfigs,
			},
		},
	}
}

func listConfigs(ctx context.Context, cmd *cli.Command) error {
	configs, err := config.NewManager(configDir(cmd))
	if err != nil {
		return err
	}

	infos, err := configs.ListConfigs()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRID\tSPEED\tBONUS\tSOURCE\tDESCRIPTION")
	for _, info := range infos {
		source := info.Filename
		if source == "" {
			source = "built-in"
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%dms\t%.0f%%\t%s\t%s\n",
			info.ConfigID, info.GridSize, info.GridSize, info.GameSpeedMs, info.BonusSpawnChance*100, source, info.Description)
	}
	return w.Flush()
}

func validateConfigs(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	out := cmd.Root().Writer
	if len(files) == 0 {
		dir := configDir(cmd)
		if dir == "" {
			fmt.Fprintln(out, "no rule files to validate")
			return nil
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return err
		}
		files = matches
	}

	failed := 0
	for _, file := range files {
		if _, err := engine.LoadGameConfig(file); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", file, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", file)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rule files are invalid", failed, len(files))
	}
	return nil
}

func initConfigs(ctx context.Context, cmd *cli.Command) error {
	dir := configDir(cmd)
	if dir == "" {
		return errors.New("--config-dir is required and cannot be combined with --builtin-rules")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	for _, name := range config.BuiltinNames() {
		path := filepath.Join(dir, name+".json")
		if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
			fmt.Fprintf(out, "skip %s (exists)\n", path)
			continue
		}

		rules, _ := config.Builtin(name)
		if err := configs.SaveConfig(name, rules); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}
