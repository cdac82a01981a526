package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tessera/pkg/config"
	"tessera/pkg/render"
	"tessera/pkg/resource"
	"tessera/pkg/viewer"
)

func main() {
	cmd := &cli.Command{
		Name:      "tesseraview",
		Usage:     "shows a document or an animated test pattern in a window",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "enable debug logging", Sources: cli.EnvVars("TESSERA_DEBUG")},
			&cli.StringFlag{Name: "pattern", Usage: "initial test pattern (plasma, checker)"},
			&cli.IntFlag{Name: "width", Usage: "initial window width"},
			&cli.IntFlag{Name: "height", Usage: "initial window height"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tesseraview: %v\n", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	log, err := cfg.Logging.Prepare(cmd.Bool("debug"))
	if err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	defer func() { _ = log.Sync() }()

	patternName := cfg.Viewer.Pattern
	if cmd.IsSet("pattern") {
		patternName = cmd.String("pattern")
	}
	pattern, err := render.ParsePattern(patternName)
	if err != nil {
		return err
	}
	width, height := cfg.Viewport.Width, cfg.Viewport.Height
	if cmd.IsSet("width") {
		width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		height = cmd.Int("height")
	}
	if err := config.CheckViewport(width, height); err != nil {
		return err
	}

	scene := viewer.NewScene(viewer.Options{
		TickHz:             cfg.Viewer.TickHz,
		MaxUpdatesPerFrame: cfg.Viewer.MaxUpdatesPerFrame,
		Pattern:            pattern,
		Overlay:            cfg.Viewer.Overlay,
	}, log)

	title := "tessera"
	if cmd.Args().Len() > 0 {
		fetcher, err := resource.NewFileFetcher("", cfg.Input.Charset)
		if err != nil {
			return err
		}
		input := cmd.Args().Get(0)
		markup, err := fetcher.FetchDocument(input)
		if err != nil {
			return err
		}
		scene.SetDocument(markup)
		title = "tessera - " + input
	}

	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(float32(width), float32(height)))

	raster := canvas.NewRaster(func(w, h int) image.Image {
		return scene.Frame(w, h)
	})
	status := widget.NewLabel("Any key toggles the pattern, Escape quits")
	w.SetContent(container.NewBorder(nil, status, nil, nil, raster))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			log.Info("Escape pressed, closing")
			a.Quit()
			return
		}
		scene.Toggle()
		raster.Refresh()
	})

	done := make(chan struct{})
	w.SetOnClosed(func() { close(done) })
	go tick(scene, raster, status, cfg.Viewer.TickHz, done)

	log.Info("Viewer started",
		zap.Int("width", width), zap.Int("height", height),
		zap.Stringer("pattern", pattern), zap.Bool("document", scene.HasDocument()))
	w.ShowAndRun()
	return nil
}

// tick drives the frame clock. Scene state is only touched on the UI
// goroutine.
func tick(scene *viewer.Scene, raster *canvas.Raster, status *widget.Label, hz uint32, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(max(hz, 1)))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			fyne.Do(func() {
				t := scene.Advance(dt)
				raster.Refresh()
				status.SetText(fmt.Sprintf("frame %d  %.1f fps", t.FrameIndex, t.FPS))
			})
		}
	}
}
