// Package viewer composes the frames shown by the interactive window: a
// rendered document or an animated test pattern, with the debug banner.
package viewer

import (
	"image"
	"time"

	"go.uber.org/zap"

	"tessera/pkg/engine"
	"tessera/pkg/frameloop"
	"tessera/pkg/render"
	"tessera/pkg/resource"
)

// Scene owns the frame buffer and the frame clock. It is not safe for
// concurrent use; the window drives it from its UI goroutine.
type Scene struct {
	log       *zap.Logger
	painter   *render.Renderer
	docs      *resource.DocumentRenderer
	scheduler *frameloop.Scheduler
	overlay   bool

	markup      string
	hasDocument bool
	showPattern bool
	built       bool
	output      engine.Output
	builtFor    image.Point

	timing frameloop.Timing
}

type Options struct {
	TickHz             uint32
	MaxUpdatesPerFrame uint32
	Pattern            render.Pattern
	Overlay            bool
}

func NewScene(opts Options, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	painter := render.NewRenderer(1, 1)
	painter.SetPattern(opts.Pattern)
	return &Scene{
		log:       log.Named("viewer"),
		painter:   painter,
		docs:      resource.NewDocumentRenderer(log),
		scheduler: frameloop.New(opts.TickHz).WithMaxUpdatesPerFrame(opts.MaxUpdatesPerFrame),
		overlay:   opts.Overlay,
	}
}

// SetDocument switches the scene to showing markup.
func (s *Scene) SetDocument(markup string) {
	s.markup = markup
	s.hasDocument = true
	s.showPattern = false
	s.built = false
}

// HasDocument reports whether a document is loaded.
func (s *Scene) HasDocument() bool {
	return s.hasDocument
}

// Toggle cycles the test pattern. With a document loaded it also flips
// between the document and the pattern.
func (s *Scene) Toggle() {
	if s.hasDocument {
		s.showPattern = !s.showPattern
		if !s.showPattern {
			return
		}
	}
	next := s.painter.TogglePattern()
	s.log.Info("Pattern toggled", zap.Stringer("pattern", next))
}

// Advance moves the frame clock by dt.
func (s *Scene) Advance(dt time.Duration) frameloop.Timing {
	s.timing = s.scheduler.Advance(dt)
	s.log.Debug("Frame timing",
		zap.Uint64("frame", s.timing.FrameIndex),
		zap.Duration("dt", s.timing.DT),
		zap.Float32("fps", s.timing.FPS),
		zap.Uint32("fixed_updates", s.timing.FixedUpdates))
	return s.timing
}

// Timing returns the result of the last Advance.
func (s *Scene) Timing() frameloop.Timing {
	return s.timing
}

// Frame paints the current frame at the given size. The document is parsed
// and its scripts handed to the host once; a size change only lays it out
// again.
func (s *Scene) Frame(width, height int) *image.RGBA {
	width, height = max(width, 1), max(height, 1)
	if width != s.painter.Width() || height != s.painter.Height() {
		s.painter.Resize(width, height)
		s.log.Debug("Resized", zap.Int("width", width), zap.Int("height", height))
	}

	if s.hasDocument && !s.showPattern {
		size := image.Pt(width, height)
		switch {
		case !s.built:
			s.output = s.docs.Build(s.markup, uint32(width), uint32(height))
			s.built = true
		case s.builtFor != size:
			s.output = engine.Relayout(s.output, uint32(width), uint32(height))
		}
		s.builtFor = size
		render.PaintFrame(s.painter, s.output.DisplayList, nil)
	} else {
		s.painter.RenderPattern(s.timing.FrameIndex)
	}

	if s.overlay {
		s.painter.DrawOverlay(render.OverlayStats{
			FrameNumber: s.timing.FrameIndex,
			FPS:         s.timing.FPS,
			Width:       width,
			Height:      height,
		})
	}
	return s.painter.Image()
}

// Output returns the last built document output.
func (s *Scene) Output() engine.Output {
	return s.output
}
