package layout

import (
	"math"
	"strings"

	"tessera/pkg/html"
)

func NewLayoutEngine(viewportWidth, viewportHeight uint32) *LayoutEngine {
	le := &LayoutEngine{}
	le.viewport.width = viewportWidth
	le.viewport.height = viewportHeight
	return le
}

// Layout assigns boxes to the document's renderable nodes. It walks the tree
// depth-first from the root's children with a vertical cursor. Once the
// cursor reaches the viewport height nothing further is laid out; nodes past
// the fold are absent from the result rather than clipped. Script elements
// and their subtrees produce no boxes. The document is not modified.
func (le *LayoutEngine) Layout(doc *html.Document) Tree {
	boxes := make([]Box, 0, len(doc.Nodes))
	cursor := uint32(startY)
	for _, child := range doc.Node(doc.Root).Children {
		cursor = le.layoutNode(doc, child, 0, cursor, &boxes)
	}
	return Tree{Boxes: boxes}
}

// layoutNode lays out id and its subtree and returns the advanced cursor.
func (le *LayoutEngine) layoutNode(doc *html.Document, id html.NodeID, depth, cursor uint32, boxes *[]Box) uint32 {
	if cursor >= le.viewport.height {
		return cursor
	}

	node := doc.Node(id)
	switch node.Type {
	case html.ElementNode:
		if node.TagName == "script" {
			return cursor
		}
		x := SatAdd(elementIndent, satMul(depth, depthStep))
		height := elementHeight(node.TagName)
		*boxes = append(*boxes, Box{
			NodeID: id,
			X:      x,
			Y:      cursor,
			Width:  le.boxWidth(x),
			Height: height,
		})
		cursor = SatAdd(SatAdd(cursor, height), elementGap)
		for _, child := range node.Children {
			cursor = le.layoutNode(doc, child, SatAdd(depth, 1), cursor, boxes)
		}

	case html.TextNode:
		if strings.TrimSpace(node.Text) == "" {
			return cursor
		}
		x := SatAdd(textIndent, satMul(depth, depthStep))
		*boxes = append(*boxes, Box{
			NodeID: id,
			X:      x,
			Y:      cursor,
			Width:  le.boxWidth(x),
			Height: textHeight,
		})
		cursor = SatAdd(cursor, textAdvance)
	}
	return cursor
}

// boxWidth fills the viewport from x, keeping a right margin, never less
// than minWidth.
func (le *LayoutEngine) boxWidth(x uint32) uint32 {
	return max(satSub(le.viewport.width, SatAdd(x, rightMargin)), minWidth)
}

// SatAdd adds without wrapping, clamping at math.MaxUint32.
func SatAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

func satSub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

func satMul(a, b uint32) uint32 {
	if a != 0 && b > math.MaxUint32/a {
		return math.MaxUint32
	}
	return a * b
}
