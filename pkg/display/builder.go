package display

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"tessera/pkg/html"
	"tessera/pkg/layout"
)

const (
	labelInset    = 4
	maxLabelRunes = 64
	ellipsis      = "..."
)

var (
	Background = Color{245, 245, 248, 255}
	LabelColor = Color{18, 24, 45, 255}
)

// Build emits the background fill followed by, for every layout box in
// order, a fill in the node's palette color and an optional label.
func Build(doc *html.Document, tree layout.Tree, viewportWidth, viewportHeight uint32) List {
	commands := make([]Command, 0, 1+2*len(tree.Boxes))
	commands = append(commands, FillRect{
		Width:  viewportWidth,
		Height: viewportHeight,
		Color:  Background,
	})

	for _, box := range tree.Boxes {
		node := doc.Node(box.NodeID)
		commands = append(commands, FillRect{
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Color:  colorForNode(node),
		})
		if label, ok := labelForNode(node); ok {
			commands = append(commands, DrawText{
				X:     layout.SatAdd(box.X, labelInset),
				Y:     layout.SatAdd(box.Y, labelInset),
				Text:  label,
				Color: LabelColor,
			})
		}
	}

	return List{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		Commands:       commands,
	}
}

func colorForNode(n *html.Node) Color {
	if n.Type == html.TextNode {
		return Color{244, 246, 252, 255}
	}
	switch n.TagName {
	case "html":
		return Color{233, 237, 248, 255}
	case "body":
		return Color{236, 241, 251, 255}
	case "header", "footer":
		return Color{195, 212, 250, 255}
	case "main", "article", "section", "aside":
		return Color{206, 221, 250, 255}
	case "nav":
		return Color{187, 206, 249, 255}
	case "h1":
		return Color{169, 192, 248, 255}
	case "h2", "h3":
		return Color{179, 201, 248, 255}
	case "p", "li", "td", "th":
		return Color{217, 228, 251, 255}
	}
	return Color{210, 224, 250, 255}
}

// labelForNode returns "<tag>" for elements and the condensed, truncated
// content for text nodes.
func labelForNode(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode {
		return "<" + n.TagName + ">", true
	}
	condensed := strings.Join(strings.Fields(n.Text), " ")
	if condensed == "" {
		return "", false
	}
	return truncateText(condensed, maxLabelRunes), true
}

// truncateText limits s to maxRunes runes, replacing the tail with an
// ellipsis when it is cut.
func truncateText(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	keep := max(maxRunes-len(ellipsis), 0)
	var sb strings.Builder
	for _, r := range s {
		if keep == 0 {
			break
		}
		sb.WriteRune(r)
		keep--
	}
	sb.WriteString(ellipsis)
	return sb.String()
}

// Fingerprint hashes the list with FNV-1a over a fixed binary encoding, for
// golden comparisons that do not need a painter.
func (l List) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, l.ViewportWidth)
	buf = binary.LittleEndian.AppendUint32(buf, l.ViewportHeight)
	for _, cmd := range l.Commands {
		switch c := cmd.(type) {
		case FillRect:
			buf = append(buf, 1)
			buf = binary.LittleEndian.AppendUint32(buf, c.X)
			buf = binary.LittleEndian.AppendUint32(buf, c.Y)
			buf = binary.LittleEndian.AppendUint32(buf, c.Width)
			buf = binary.LittleEndian.AppendUint32(buf, c.Height)
			buf = append(buf, c.Color[:]...)
		case DrawText:
			buf = append(buf, 2)
			buf = binary.LittleEndian.AppendUint32(buf, c.X)
			buf = binary.LittleEndian.AppendUint32(buf, c.Y)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Text)))
			buf = append(buf, c.Text...)
			buf = append(buf, c.Color[:]...)
		}
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}
