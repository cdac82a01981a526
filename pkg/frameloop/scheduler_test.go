package frameloop

import (
	"testing"
	"time"
)

func TestScheduler_FixedUpdates(t *testing.T) {
	s := New(60)
	if got := s.Advance(16 * time.Millisecond).FixedUpdates; got != 0 {
		t.Errorf("first frame: %d updates, want 0", got)
	}
	if got := s.Advance(17 * time.Millisecond).FixedUpdates; got != 1 {
		t.Errorf("second frame: %d updates, want 1", got)
	}
}

func TestScheduler_ReportsFPS(t *testing.T) {
	s := New(60)
	var last Timing
	for i := 0; i < 65; i++ {
		last = s.Advance(16 * time.Millisecond)
	}
	if last.FPS <= 0 {
		t.Errorf("fps = %v, want > 0", last.FPS)
	}
	if last.FPS < 60 || last.FPS > 64 {
		t.Errorf("fps = %v, want about 62.5", last.FPS)
	}
	if last.FrameIndex != 65 {
		t.Errorf("frame index = %d, want 65", last.FrameIndex)
	}
}

func TestScheduler_CapsUpdatesPerFrame(t *testing.T) {
	s := New(100).WithMaxUpdatesPerFrame(3)
	if got := s.Advance(time.Second).FixedUpdates; got != 3 {
		t.Errorf("capped frame: %d updates, want 3", got)
	}
	// the remainder is carried over
	if got := s.Advance(0).FixedUpdates; got != 3 {
		t.Errorf("carry-over frame: %d updates, want 3", got)
	}
}

func TestScheduler_DefaultsAndClamps(t *testing.T) {
	if got := New(0).FixedStep(); got != time.Second {
		t.Errorf("zero rate step = %v, want 1s", got)
	}
	if got := New(50).FixedStep(); got != 20*time.Millisecond {
		t.Errorf("50Hz step = %v", got)
	}
	s := New(1000).WithMaxUpdatesPerFrame(0)
	if got := s.Advance(time.Second).FixedUpdates; got != 1 {
		t.Errorf("min cap: %d updates, want 1", got)
	}
	if got := New(10).Advance(time.Second).FixedUpdates; got != defaultMaxUpdatesPerFrame {
		t.Errorf("default cap: %d updates", got)
	}
}

func TestScheduler_FrameIndexWraps(t *testing.T) {
	s := New(60)
	s.frameIndex = ^uint64(0)
	if got := s.Advance(time.Millisecond).FrameIndex; got != 0 {
		t.Errorf("frame index = %d, want wrap to 0", got)
	}
}
