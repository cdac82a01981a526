package engine

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"tessera/pkg/display"
	"tessera/pkg/html"
)

var corpus = []string{
	"",
	"just text",
	"<html><body><h1>Hello</h1><p>world</p></body></html>",
	"<!DOCTYPE html><html><head><meta charset=utf-8><title>T</title></head><body><header>top</header><main><section><h2>Sub</h2><p>a<br>b</p></section></main><footer>end</footer></body></html>",
	"<div><span>x</div>after</p><img src=a.png/>tail",
	"<ul><li>one<li>two<li>three</ul><!-- note --><script>var x = '<p>';</script>",
	"<body><script>unterminated(",
	"<p>" + strings.Repeat("long text ", 20) + "</p>",
	strings.Repeat("<div>", 40) + "deep" + strings.Repeat("</div>", 40),
}

func TestRenderDocument_Deterministic(t *testing.T) {
	for _, in := range corpus {
		a := RenderDocument(in, 800, 600)
		b := RenderDocument(in, 800, 600)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%q: outputs differ between runs", in)
		}
		if a.Hash() != b.Hash() {
			t.Errorf("%q: hashes differ between runs", in)
		}
	}
}

func TestRenderDocument_ConcurrentCalls(t *testing.T) {
	want := make([]uint64, len(corpus))
	for i, in := range corpus {
		want[i] = RenderDocument(in, 640, 480).Hash()
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(corpus)*8)
	for n := 0; n < 8; n++ {
		for i, in := range corpus {
			wg.Add(1)
			go func(i int, in string) {
				defer wg.Done()
				if got := RenderDocument(in, 640, 480).Hash(); got != want[i] {
					errs <- in
				}
			}(i, in)
		}
	}
	wg.Wait()
	close(errs)
	for in := range errs {
		t.Errorf("%q: concurrent render differs", in)
	}
}

func TestRenderDocument_Invariants(t *testing.T) {
	for _, in := range corpus {
		for _, vp := range [][2]uint32{{800, 600}, {320, 120}, {0, 0}, {1, 4000}} {
			out := RenderDocument(in, vp[0], vp[1])

			if err := out.Document.Validate(); err != nil {
				t.Errorf("%q: %v", in, err)
			}

			boxes := out.Layout.Boxes
			for i := 1; i < len(boxes); i++ {
				if boxes[i].Y < boxes[i-1].Y {
					t.Errorf("%q: layout not monotonic at %d", in, i)
				}
			}
			for _, b := range boxes {
				if b.Y >= vp[1] {
					t.Errorf("%q %v: box %v starts past the fold", in, vp, b)
				}
				if b.Width < 8 {
					t.Errorf("%q: box %v narrower than 8", in, b)
				}
			}

			first, ok := out.DisplayList.Commands[0].(display.FillRect)
			if !ok || first.X != 0 || first.Y != 0 || first.Width != vp[0] || first.Height != vp[1] {
				t.Errorf("%q: first command is not the background: %v", in, out.DisplayList.Commands[0])
			}
		}
	}
}

func TestRenderDocument_TokensExample(t *testing.T) {
	out := RenderDocument("<html><body><h1>Hello</h1><p>world</p></body></html>", 800, 600)
	var got []string
	for _, tok := range out.Tokens {
		got = append(got, tok.String())
	}
	want := "StartTag(html) StartTag(body) StartTag(h1) Text(Hello) EndTag(h1) StartTag(p) Text(world) EndTag(p) EndTag(body) EndTag(html)"
	if strings.Join(got, " ") != want {
		t.Errorf("tokens = %s\nwant   %s", strings.Join(got, " "), want)
	}
}

func TestRenderDocument_Scripts(t *testing.T) {
	out := RenderDocument("<html><body><script>window.answer = 42;</script></body></html>", 800, 600)
	if len(out.Scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(out.Scripts))
	}
	if out.Scripts[0].Code != "window.answer = 42;" {
		t.Errorf("unexpected code %q", out.Scripts[0].Code)
	}
	if !out.Document.Node(out.Scripts[0].NodeID).IsElement("script") {
		t.Error("snippet does not point at a script element")
	}
}

func TestRenderDocument_DisplayListHasText(t *testing.T) {
	out := RenderDocument("<html><body><h1>Hello</h1><p>Visible text</p></body></html>", 640, 360)
	found := false
	for _, cmd := range out.DisplayList.Commands {
		if d, ok := cmd.(display.DrawText); ok && d.Text == "Visible text" {
			found = true
		}
	}
	if !found {
		t.Error("expected a DrawText for the paragraph text")
	}
}

func TestRenderDocument_VoidElementsChildless(t *testing.T) {
	out := RenderDocument("<p>a<img>b<input>c<hr>d<link><meta>e<br>f</p>", 800, 600)
	for i := range out.Document.Nodes {
		n := &out.Document.Nodes[i]
		if n.Type == html.ElementNode && html.IsVoidElement(n.TagName) && len(n.Children) != 0 {
			t.Errorf("void <%s> has children", n.TagName)
		}
	}
}

func TestOutput_HashSensitiveToScripts(t *testing.T) {
	a := RenderDocument("<script>a()</script>", 800, 600)
	b := RenderDocument("<script>b()</script>", 800, 600)
	if a.Hash() == b.Hash() {
		t.Error("hash ignores script content")
	}
}

func TestRelayout_MatchesFreshRender(t *testing.T) {
	for _, in := range corpus {
		first := RenderDocument(in, 800, 600)
		moved := Relayout(first, 320, 120)
		fresh := RenderDocument(in, 320, 120)
		if !reflect.DeepEqual(moved.Layout, fresh.Layout) {
			t.Errorf("%q: layout differs after relayout", in)
		}
		if moved.Hash() != fresh.Hash() {
			t.Errorf("%q: hash differs after relayout", in)
		}
		if moved.Document != first.Document {
			t.Errorf("%q: relayout should keep the parsed document", in)
		}
		if first.DisplayList.ViewportWidth != 800 {
			t.Errorf("%q: relayout changed the original output", in)
		}
	}
}
