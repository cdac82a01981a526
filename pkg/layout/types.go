package layout

import (
	"fmt"

	"tessera/pkg/html"
)

// Box is the viewport-space rectangle assigned to one node. All values are
// in pixels.
type Box struct {
	NodeID html.NodeID
	X      uint32
	Y      uint32
	Width  uint32
	Height uint32
}

func (b Box) String() string {
	return fmt.Sprintf("#%d (%d,%d %dx%d)", b.NodeID, b.X, b.Y, b.Width, b.Height)
}

// Tree is the layout result: boxes in the order they were produced, which is
// document order and non-decreasing Y.
type Tree struct {
	Boxes []Box
}

type LayoutEngine struct {
	viewport struct {
		width  uint32
		height uint32
	}
}

const (
	startY        = 8  // cursor at the top of the page
	elementIndent = 8  // x of a depth-0 element
	textIndent    = 12 // x of a depth-0 text node
	depthStep     = 12 // horizontal indent per nesting level
	rightMargin   = 8
	minWidth      = 8
	elementGap    = 6 // space below an element box before its first child
	textHeight    = 18
	textAdvance   = 24
)

// elementHeight returns the fixed box height for a tag.
func elementHeight(tagName string) uint32 {
	switch tagName {
	case "html", "body":
		return 26
	case "h1":
		return 44
	case "h2":
		return 38
	case "p":
		return 26
	case "div":
		return 30
	case "section":
		return 34
	}
	return 24
}
