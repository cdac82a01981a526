package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"tessera/pkg/golden"
	"tessera/pkg/state"
)

func runGolden(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	cfg := env.Cfg.Golden

	width, height, err := viewport(cmd, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	opts := golden.Options{
		FixtureDir: cfg.FixtureDir,
		GoldenDir:  cfg.GoldenDir,
		Width:      width,
		Height:     height,
		Frame:      cfg.Frame,
		Update:     cmd.Bool("update"),
		Fetcher:    env.Fetcher,
		Snapshots:  cfg.Snapshots || cmd.Bool("snapshots"),
		Compare:    golden.CompareOptions{Tolerance: cfg.Tolerance},
	}
	if cmd.IsSet("fixture-dir") {
		opts.FixtureDir = cmd.String("fixture-dir")
	}
	if cmd.IsSet("golden-dir") {
		opts.GoldenDir = cmd.String("golden-dir")
	}
	if cmd.IsSet("frame") {
		opts.Frame = cmd.Uint64("frame")
	}

	_, err = golden.Run(opts, env.Log)
	if errs := multierr.Errors(err); len(errs) > 1 {
		return fmt.Errorf("%d golden mismatches: %w", len(errs), err)
	}
	return err
}
