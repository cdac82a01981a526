// Package frameloop drives fixed-timestep updates from variable frame times.
package frameloop

import "time"

const defaultMaxUpdatesPerFrame = 8

// Timing describes one advanced frame.
type Timing struct {
	FrameIndex   uint64
	DT           time.Duration
	FPS          float32
	FixedUpdates uint32
}

// Scheduler accumulates frame time and releases it in fixed steps. It is not
// safe for concurrent use.
type Scheduler struct {
	fixedStep          time.Duration
	maxUpdatesPerFrame uint32
	accumulator        time.Duration

	frameIndex       uint64
	secondElapsed    time.Duration
	framesThisSecond uint32
	fps              float32
}

// New creates a scheduler ticking tickHz times per second. A zero rate is
// treated as 1Hz.
func New(tickHz uint32) *Scheduler {
	if tickHz == 0 {
		tickHz = 1
	}
	return &Scheduler{
		fixedStep:          time.Second / time.Duration(tickHz),
		maxUpdatesPerFrame: defaultMaxUpdatesPerFrame,
	}
}

// WithMaxUpdatesPerFrame caps the fixed updates released by one Advance.
// The cap is at least 1.
func (s *Scheduler) WithMaxUpdatesPerFrame(n uint32) *Scheduler {
	if n == 0 {
		n = 1
	}
	s.maxUpdatesPerFrame = n
	return s
}

func (s *Scheduler) FixedStep() time.Duration {
	return s.fixedStep
}

// Advance records a frame that took dt and reports how many fixed updates
// are due. Time beyond the per-frame cap stays in the accumulator.
func (s *Scheduler) Advance(dt time.Duration) Timing {
	if dt < 0 {
		dt = 0
	}
	s.accumulator = satAdd(s.accumulator, dt)

	var updates uint32
	for s.accumulator >= s.fixedStep && updates < s.maxUpdatesPerFrame {
		s.accumulator -= s.fixedStep
		updates++
	}

	s.frameIndex++ // wraps
	if s.framesThisSecond < ^uint32(0) {
		s.framesThisSecond++
	}
	s.secondElapsed = satAdd(s.secondElapsed, dt)

	if s.secondElapsed >= time.Second {
		if secs := s.secondElapsed.Seconds(); secs > 0 {
			s.fps = float32(float64(s.framesThisSecond) / secs)
		}
		s.framesThisSecond = 0
		s.secondElapsed = 0
	}

	return Timing{
		FrameIndex:   s.frameIndex,
		DT:           dt,
		FPS:          s.fps,
		FixedUpdates: updates,
	}
}

func satAdd(a, b time.Duration) time.Duration {
	if sum := a + b; sum >= a {
		return sum
	}
	return time.Duration(1<<63 - 1)
}
