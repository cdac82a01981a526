// Package display turns a layout into an ordered list of paint primitives.
//
// A List fully describes one frame. Painters draw its commands in order,
// later commands over earlier ones. The first command is always a fill of
// the whole viewport.
package display

import (
	"fmt"
	"image/color"
)

// Color is straight (non-premultiplied) RGBA.
type Color [4]uint8

func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c[0], c[1], c[2], c[3])
}

// Command is a paint primitive. The set is closed: FillRect and DrawText
// are the only implementations.
type Command interface {
	isCommand()
	String() string
}

type FillRect struct {
	X, Y          uint32
	Width, Height uint32
	Color         Color
}

type DrawText struct {
	X, Y  uint32
	Text  string
	Color Color
}

func (FillRect) isCommand() {}
func (DrawText) isCommand() {}

func (f FillRect) String() string {
	return fmt.Sprintf("FillRect(%d,%d %dx%d %s)", f.X, f.Y, f.Width, f.Height, f.Color)
}

func (d DrawText) String() string {
	return fmt.Sprintf("DrawText(%d,%d %q %s)", d.X, d.Y, d.Text, d.Color)
}

type List struct {
	ViewportWidth  uint32
	ViewportHeight uint32
	Commands       []Command
}
