// Package engine runs the document pipeline: tokenize, build the tree, lay
// it out, emit the display list and collect scripts.
//
// RenderDocument keeps no state between calls. Each call allocates its own
// arena, box list and command list, so concurrent calls on independent
// inputs need no locking, and identical inputs give identical outputs.
package engine

import (
	"encoding/binary"
	"hash/fnv"

	"tessera/pkg/display"
	"tessera/pkg/html"
	"tessera/pkg/layout"
	"tessera/pkg/script"
)

// Output bundles every stage's result for one document.
type Output struct {
	Tokens      []html.Token
	Document    *html.Document
	Layout      layout.Tree
	DisplayList display.List
	Scripts     []script.Snippet
}

// RenderDocument runs the whole pipeline over markup for a viewport of the
// given size. It never fails; malformed markup degrades the output instead.
func RenderDocument(input string, viewportWidth, viewportHeight uint32) Output {
	tokens := html.Tokenize(input)
	doc := html.Parse(tokens)
	return Relayout(Output{
		Tokens:   tokens,
		Document: doc,
		Scripts:  script.Collect(doc),
	}, viewportWidth, viewportHeight)
}

// Relayout lays out out's document again for a new viewport and rebuilds
// the display list. Tokens, document and scripts are shared with out.
func Relayout(out Output, viewportWidth, viewportHeight uint32) Output {
	out.Layout = layout.NewLayoutEngine(viewportWidth, viewportHeight).Layout(out.Document)
	out.DisplayList = display.Build(out.Document, out.Layout, viewportWidth, viewportHeight)
	return out
}

// Hash fingerprints the display list together with the collected scripts.
func (o Output) Hash() uint64 {
	h := fnv.New64a()
	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, o.DisplayList.Fingerprint())
	for _, s := range o.Scripts {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(s.NodeID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Code)))
		buf = append(buf, s.Code...)
	}
	_, _ = h.Write(buf)
	return h.Sum64()
}
