package resource

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"tessera/pkg/engine"
	"tessera/pkg/render"
	"tessera/pkg/script"
)

// Renderer renders HTML content onto an image.
type Renderer interface {
	Render(htmlContent string, target *image.RGBA) error
}

// DocumentRenderer runs the pipeline, hands scripts to a host and paints the
// display list.
type DocumentRenderer struct {
	log     *zap.Logger
	overlay *render.OverlayStats
	last    engine.Output
}

func NewDocumentRenderer(log *zap.Logger) *DocumentRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentRenderer{log: log}
}

// SetOverlay enables the debug banner on subsequent renders; nil disables
// it.
func (r *DocumentRenderer) SetOverlay(stats *render.OverlayStats) {
	r.overlay = stats
}

// Render lays out htmlContent for the target's size and paints it. Scripts
// never fail a render: the host's unsupported signal is logged as a warning.
func (r *DocumentRenderer) Render(htmlContent string, target *image.RGBA) error {
	return r.render(htmlContent, target, r.overlay)
}

// RenderFrame paints htmlContent into a new width x height buffer with the
// debug banner for frame. Headless output and golden hashes are taken from
// this buffer.
func (r *DocumentRenderer) RenderFrame(htmlContent string, width, height int, frame uint64) (*image.RGBA, error) {
	target := image.NewRGBA(image.Rect(0, 0, width, height))
	stats := render.OverlayStats{FrameNumber: frame, Width: width, Height: height}
	if err := r.render(htmlContent, target, &stats); err != nil {
		return nil, err
	}
	return target, nil
}

func (r *DocumentRenderer) render(htmlContent string, target *image.RGBA, overlay *render.OverlayStats) error {
	if target == nil {
		return errors.New("render target is nil")
	}
	bounds := target.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("render target has empty size %dx%d", bounds.Dx(), bounds.Dy())
	}

	out := r.Build(htmlContent, uint32(bounds.Dx()), uint32(bounds.Dy()))

	render.PaintFrame(render.NewRendererForImage(target), out.DisplayList, overlay)
	return nil
}

// Build runs the pipeline and the script host without painting.
func (r *DocumentRenderer) Build(htmlContent string, width, height uint32) engine.Output {
	out := engine.RenderDocument(htmlContent, width, height)

	host := script.NewStubHost(r.log)
	if err := host.Execute(out.Scripts); err != nil {
		var unsupported *script.UnsupportedError
		if errors.As(err, &unsupported) {
			r.log.Warn("Script execution unsupported, rendering without scripts",
				zap.Int("scripts", unsupported.ScriptCount),
				zap.Int("syntax_errors", len(host.Diagnostics())))
		} else {
			r.log.Warn("Script host failed", zap.Error(err))
		}
	}

	r.log.Debug("Document built",
		zap.Int("tokens", len(out.Tokens)),
		zap.Int("nodes", out.Document.Len()),
		zap.Int("boxes", len(out.Layout.Boxes)),
		zap.Int("commands", len(out.DisplayList.Commands)))
	r.last = out
	return out
}

// Last returns the output of the most recent Build or Render.
func (r *DocumentRenderer) Last() engine.Output {
	return r.last
}
