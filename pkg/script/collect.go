// Package script extracts inline scripts from a document and hands them to
// a script host.
package script

import (
	"strings"

	"tessera/pkg/html"
)

// Snippet is the source of one <script> element.
type Snippet struct {
	NodeID html.NodeID
	Code   string
}

// Collect returns the code of every script element in document order. Code
// is the verbatim concatenation of the element's direct text children;
// elements whose code is blank are left out.
func Collect(doc *html.Document) []Snippet {
	snippets := make([]Snippet, 0)
	doc.Walk(func(id html.NodeID, _ int) bool {
		node := doc.Node(id)
		if !node.IsElement("script") {
			return true
		}
		var sb strings.Builder
		for _, c := range node.Children {
			if child := doc.Node(c); child.Type == html.TextNode {
				sb.WriteString(child.Text)
			}
		}
		if code := sb.String(); strings.TrimSpace(code) != "" {
			snippets = append(snippets, Snippet{NodeID: id, Code: code})
		}
		return true
	})
	return snippets
}
