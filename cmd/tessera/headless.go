package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"tessera/pkg/content"
	"tessera/pkg/ipc"
	"tessera/pkg/render"
	"tessera/pkg/resource"
	"tessera/pkg/state"
)

func runHeadless(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	width, height, err := viewport(cmd, env.Cfg.Viewport.Width, env.Cfg.Viewport.Height)
	if err != nil {
		return err
	}
	frame := env.Cfg.Headless.Frame
	if cmd.IsSet("frame") {
		frame = cmd.Uint64("frame")
	}
	split := env.Cfg.ProcessSplit.Enabled || cmd.Bool("split")

	input := cmd.String("input")
	markup, err := env.Fetcher.FetchDocument(input)
	if err != nil {
		return err
	}

	overlay := &render.OverlayStats{FrameNumber: frame, Width: width, Height: height}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := newFrameRenderer(ctx, env.Log, input, split, overlay).Render(markup, img); err != nil {
		return err
	}

	out := cmd.String("out")
	n, err := writeFrame(img, out)
	if err != nil {
		return err
	}
	env.Log.Info("Headless frame written",
		zap.String("path", out),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bytes", n),
		zap.Bool("split", split))
	return nil
}

// newFrameRenderer returns the renderer for headless frames: the document
// renderer, or one that goes through the ipc boundary when split is set.
func newFrameRenderer(ctx context.Context, log *zap.Logger, input string, split bool, overlay *render.OverlayStats) resource.Renderer {
	if split {
		return &splitRenderer{ctx: ctx, log: log, url: resource.FileURL(input), overlay: overlay}
	}
	r := resource.NewDocumentRenderer(log)
	r.SetOverlay(overlay)
	return r
}

// splitRenderer sends the document to the content side and paints the
// display list it produced.
type splitRenderer struct {
	ctx     context.Context
	log     *zap.Logger
	url     string
	overlay *render.OverlayStats
}

func (s *splitRenderer) Render(markup string, target *image.RGBA) error {
	if target == nil {
		return errors.New("render target is nil")
	}
	b := target.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("render target has empty size %dx%d", b.Dx(), b.Dy())
	}
	res, err := content.LoadInProcess(s.ctx, ipc.LoadDocument{
		RequestID: 1,
		URL:       s.url,
		HTML:      markup,
		Viewport:  ipc.Viewport{Width: uint32(b.Dx()), Height: uint32(b.Dy())},
	}, s.log)
	if err != nil {
		return err
	}
	for _, l := range res.Logs {
		s.log.Info("Content side", zap.Stringer("level", l.Level), zap.String("message", l.Message))
	}
	render.PaintFrame(render.NewRendererForImage(target), res.Output.DisplayList, s.overlay)
	return nil
}

// writeFrame stores img at path, encoded by extension when the extension is
// a known image format and as raw RGBA8 rows otherwise. It returns the
// number of pixel bytes.
func writeFrame(img *image.RGBA, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	pixels := render.NewRendererForImage(img).Pixels()
	if _, err := imaging.FormatFromFilename(path); err == nil {
		if err := imaging.Save(img, path); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", path, err)
		}
		return len(pixels), nil
	}
	if err := os.WriteFile(path, pixels, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(pixels), nil
}
