package html

import (
	"testing"
)

func childTags(doc *Document, id NodeID) []string {
	var tags []string
	for _, c := range doc.Node(id).Children {
		n := doc.Node(c)
		if n.Type == TextNode {
			tags = append(tags, "#"+n.Text)
		} else {
			tags = append(tags, n.TagName)
		}
	}
	return tags
}

func assertChildren(t *testing.T, doc *Document, id NodeID, want ...string) {
	t.Helper()
	got := childTags(doc, id)
	if len(got) != len(want) {
		t.Fatalf("node %d children = %v, want %v", id, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("node %d children = %v, want %v", id, got, want)
		}
	}
}

func TestParser_DocumentShape(t *testing.T) {
	doc := ParseString("<html><body><h1>Hello</h1><p>world</p></body></html>")

	if doc.Root != 0 {
		t.Fatalf("expected root 0, got %d", doc.Root)
	}
	root := doc.Node(doc.Root)
	if !root.IsElement("document") || root.Parent != NoParent {
		t.Fatalf("unexpected root node %+v", root)
	}
	assertChildren(t, doc, doc.Root, "html")

	html := root.Children[0]
	assertChildren(t, doc, html, "body")

	body := doc.Node(html).Children[0]
	assertChildren(t, doc, body, "h1", "p")

	h1 := doc.Node(body).Children[0]
	assertChildren(t, doc, h1, "#Hello")
}

func TestParser_EmptyInput(t *testing.T) {
	doc := ParseString("")
	if doc.Len() != 1 {
		t.Errorf("expected only the root node, got %d nodes", doc.Len())
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestParser_IDsFollowCreationOrder(t *testing.T) {
	doc := ParseString("<div><p>a</p><p>b</p></div>")
	want := []string{"document", "div", "p", "#a", "p", "#b"}
	if doc.Len() != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), doc.Len())
	}
	for i, w := range want {
		n := doc.Node(NodeID(i))
		got := n.TagName
		if n.Type == TextNode {
			got = "#" + n.Text
		}
		if got != w {
			t.Errorf("node %d = %q, want %q", i, got, w)
		}
	}
	if doc.Node(3).Parent != 2 || doc.Node(5).Parent != 4 || doc.Node(4).Parent != 1 {
		t.Error("unexpected parent links")
	}
}

func TestParser_VoidElementsHaveNoChildren(t *testing.T) {
	doc := Parse([]Token{StartTag("div"), StartTag("img"), Text("caption"), EndTag("div")})
	div := doc.Node(doc.Root).Children[0]
	assertChildren(t, doc, div, "img", "#caption")
	img := doc.Node(div).Children[0]
	if len(doc.Node(img).Children) != 0 {
		t.Error("void element received children")
	}
}

func TestParser_MismatchedEndTagClosesIntermediate(t *testing.T) {
	doc := ParseString("<div><span>x</div>after")
	assertChildren(t, doc, doc.Root, "div", "#after")
	div := doc.Node(doc.Root).Children[0]
	assertChildren(t, doc, div, "span")
}

func TestParser_UnknownEndTagClosesEverything(t *testing.T) {
	doc := ParseString("<div><p>x</em>y")
	assertChildren(t, doc, doc.Root, "div", "#y")
}

// The synthetic end tag after a void element finds no open match and closes
// all open elements, so following text lands under the root.
func TestParser_VoidEndTagOverCloses(t *testing.T) {
	doc := ParseString("<html><body><p>a<br>b</p></body></html>")
	assertChildren(t, doc, doc.Root, "html", "#b")
	html := doc.Node(doc.Root).Children[0]
	body := doc.Node(html).Children[0]
	p := doc.Node(body).Children[0]
	assertChildren(t, doc, p, "#a", "br")
	if err := doc.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestParser_RootNeverPopped(t *testing.T) {
	doc := ParseString("</div></p>text<p>x</p>")
	assertChildren(t, doc, doc.Root, "#text", "p")
}

func TestParser_ScriptContent(t *testing.T) {
	doc := ParseString("<body><script>let a = '<b>';</script></body>")
	body := doc.Node(doc.Root).Children[0]
	assertChildren(t, doc, body, "script")
	script := doc.Node(body).Children[0]
	assertChildren(t, doc, script, "#let a = '<b>';")
}

func TestParser_FeedIncrementally(t *testing.T) {
	parser := NewParser()
	tokenizer := NewTokenizer("<ul><li>one</li><li>two</li></ul>")
	for tok := tokenizer.NextToken(); tok.Type != TokenEOF; tok = tokenizer.NextToken() {
		parser.Feed(tok)
	}
	doc := parser.Document()
	ul := doc.Node(doc.Root).Children[0]
	assertChildren(t, doc, ul, "li", "li")
}
