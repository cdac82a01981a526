package viewer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"tessera/pkg/engine"
	"tessera/pkg/render"
)

func newScene(t *testing.T, overlay bool) *Scene {
	return NewScene(Options{TickHz: 60, MaxUpdatesPerFrame: 4, Pattern: render.PatternPlasma, Overlay: overlay}, zaptest.NewLogger(t))
}

func TestScene_PatternAnimates(t *testing.T) {
	s := newScene(t, false)
	first := bytes.Clone(s.Frame(64, 32).Pix)
	s.Advance(16 * time.Millisecond)
	second := s.Frame(64, 32).Pix
	assert.NotEqual(t, first, second, "plasma should move between frames")
}

func TestScene_TogglePattern(t *testing.T) {
	s := newScene(t, false)
	plasma := bytes.Clone(s.Frame(64, 64).Pix)
	s.Toggle()
	checker := s.Frame(64, 64).Pix
	assert.NotEqual(t, plasma, checker)
}

func TestScene_Document(t *testing.T) {
	s := newScene(t, false)
	s.SetDocument("<h1>Hello</h1>")
	require.True(t, s.HasDocument())

	img := s.Frame(640, 360)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Len(t, s.Output().DisplayList.Commands, 5)
	assert.Equal(t, uint8(245), img.RGBAAt(2, 2).R)

	// resize lays the document out again
	s.Frame(200, 100)
	assert.Equal(t, uint32(200), s.Output().DisplayList.ViewportWidth)

	// toggling flips to the pattern and back
	s.Toggle()
	patternFrame := bytes.Clone(s.Frame(200, 100).Pix)
	s.Toggle()
	docFrame := s.Frame(200, 100).Pix
	assert.NotEqual(t, patternFrame, docFrame)
	assert.Equal(t, uint8(245), s.Frame(200, 100).RGBAAt(2, 2).R)
}

func TestScene_ResizeKeepsScripts(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewScene(Options{TickHz: 60, Pattern: render.PatternPlasma}, zap.New(core))
	s.SetDocument("<body><script>start()</script><p>resizable</p></body>")

	s.Frame(300, 200)
	s.Frame(200, 100)
	s.Frame(400, 300)

	warnings := logs.FilterMessage("Script execution unsupported, rendering without scripts")
	assert.Equal(t, 1, warnings.Len(), "scripts should be handed to the host once")

	want := engine.RenderDocument("<body><script>start()</script><p>resizable</p></body>", 400, 300)
	assert.Equal(t, want.Hash(), s.Output().Hash())
	assert.Len(t, s.Output().Scripts, 1)

	// a new document is built again
	s.SetDocument("<script>other()</script>")
	s.Frame(400, 300)
	assert.Equal(t, 2, logs.FilterMessage("Script execution unsupported, rendering without scripts").Len())
}

func TestScene_OverlayAndTiming(t *testing.T) {
	plain := newScene(t, false)
	banner := newScene(t, true)
	for i := 0; i < 3; i++ {
		plain.Advance(20 * time.Millisecond)
		banner.Advance(20 * time.Millisecond)
	}
	assert.Equal(t, uint64(3), banner.Timing().FrameIndex)
	assert.NotEqual(t, plain.Frame(500, 60).Pix, banner.Frame(500, 60).Pix)
}

func TestScene_DegenerateSize(t *testing.T) {
	s := newScene(t, true)
	img := s.Frame(0, -5)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())
}
