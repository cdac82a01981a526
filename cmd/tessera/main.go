package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tessera/pkg/config"
	"tessera/pkg/resource"
	"tessera/pkg/state"
)

const appName = "tessera"

// initializeAppContext prepares configuration and logging after the command
// line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.Load(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.Log, err = env.Cfg.Logging.Prepare(cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	if env.Fetcher, err = resource.NewFileFetcher("", env.Cfg.Input.Charset); err != nil {
		return ctx, fmt.Errorf("unable to prepare input: %w", err)
	}

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.RestoreStdLog()
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "renders minimal HTML documents into display lists and frames",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logging", Sources: cli.EnvVars("TESSERA_DEBUG")},
		},
		Commands: []*cli.Command{
			{
				Name:   "headless",
				Usage:  "Renders one document to a raw RGBA8 frame or an image file",
				Action: runHeadless,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "HTML `FILE` to render"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true,
						Usage: "output `FILE`; .png, .jpg, .gif, .tif and .bmp are encoded, anything else gets raw RGBA8 bytes"},
					&cli.IntFlag{Name: "width", Usage: "viewport width (default from configuration)"},
					&cli.IntFlag{Name: "height", Usage: "viewport height (default from configuration)"},
					&cli.Uint64Flag{Name: "frame", Usage: "frame number shown in the debug banner"},
					&cli.BoolFlag{Name: "split", Usage: "render through the in-process ipc boundary"},
				},
			},
			{
				Name:   "golden",
				Usage:  "Checks rendered fixtures against stored frame hashes",
				Action: runGolden,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "update", Usage: "rewrite all stored hashes"},
					&cli.StringFlag{Name: "fixture-dir", Usage: "`DIR` with *.html fixtures (default from configuration)"},
					&cli.StringFlag{Name: "golden-dir", Usage: "`DIR` with stored hashes (default from configuration)"},
					&cli.IntFlag{Name: "width", Usage: "viewport width (default from configuration)"},
					&cli.IntFlag{Name: "height", Usage: "viewport height (default from configuration)"},
					&cli.Uint64Flag{Name: "frame", Usage: "frame number shown in the debug banner"},
					&cli.BoolFlag{Name: "snapshots", Usage: "keep PNG snapshots and compare pixels on mismatch"},
				},
			},
			{
				Name:      "dump",
				Usage:     "Prints the pipeline stages of one document",
				Action:    runDump,
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "stage", Aliases: []string{"s"},
						Usage: "stages to print: " + stageNames + " (default all)"},
					&cli.IntFlag{Name: "width", Usage: "viewport width (default from configuration)"},
					&cli.IntFlag{Name: "height", Usage: "viewport height (default from configuration)"},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				Action:    outputConfiguration,
				ArgsUsage: "DESTINATION",
			},
		},
	}

	var err error
	// os.Exit is called at the end of main to set the exit code, no other
	// deferred functions may follow
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err  error
		data []byte
		kind string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		kind = "default"
		data = config.Default()
	} else {
		kind = "actual"
		if data, err = config.Dump(env.Cfg); err != nil {
			return fmt.Errorf("unable to get configuration: %w", err)
		}
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Debug("Outputting configuration", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

// viewport picks the size from the flags when set, otherwise from defaults.
func viewport(cmd *cli.Command, width, height int) (int, int, error) {
	if cmd.IsSet("width") {
		width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		height = cmd.Int("height")
	}
	if err := config.CheckViewport(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}
