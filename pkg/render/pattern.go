package render

import (
	"fmt"
	"strings"
)

// Pattern is a synthetic image shown when no document is loaded.
type Pattern int

const (
	PatternPlasma Pattern = iota
	PatternChecker
)

func (p Pattern) String() string {
	switch p {
	case PatternPlasma:
		return "plasma"
	case PatternChecker:
		return "checker"
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// Toggle switches between the two patterns.
func (p Pattern) Toggle() Pattern {
	if p == PatternPlasma {
		return PatternChecker
	}
	return PatternPlasma
}

func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plasma":
		return PatternPlasma, nil
	case "checker":
		return PatternChecker, nil
	}
	return PatternPlasma, fmt.Errorf("unknown pattern %q (expected: plasma|checker)", s)
}

func (r *Renderer) Pattern() Pattern {
	return r.pattern
}

func (r *Renderer) SetPattern(p Pattern) {
	r.pattern = p
}

func (r *Renderer) TogglePattern() Pattern {
	r.pattern = r.pattern.Toggle()
	return r.pattern
}

// RenderPattern fills the buffer with the current pattern animated to frame.
func (r *Renderer) RenderPattern(frame uint64) {
	switch r.pattern {
	case PatternChecker:
		r.checker(frame)
	default:
		r.plasma(frame)
	}
}

func (r *Renderer) plasma(frame uint64) {
	w, h := r.Width(), r.Height()
	t := uint32(frame)
	for y := 0; y < h; y++ {
		i := r.target.PixOffset(0, y)
		for x := 0; x < w; x++ {
			fx, fy := uint32(x), uint32(y)
			px := r.target.Pix[i : i+4 : i+4]
			px[0] = uint8(fx + t)
			px[1] = uint8(fy + t/2)
			px[2] = uint8((fx ^ fy) + t/3)
			px[3] = 0xff
			i += 4
		}
	}
}

func (r *Renderer) checker(frame uint64) {
	w, h := r.Width(), r.Height()
	t := int((frame / 12) % 32)
	for y := 0; y < h; y++ {
		i := r.target.PixOffset(0, y)
		for x := 0; x < w; x++ {
			var value uint8 = 220
			if (x/32+y/32+t)&1 == 0 {
				value = 30
			}
			px := r.target.Pix[i : i+4 : i+4]
			px[0] = value
			px[1] = value/2 + 20
			px[2] = 255 - value/3
			px[3] = 0xff
			i += 4
		}
	}
}
