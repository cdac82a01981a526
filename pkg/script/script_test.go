package script

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessera/pkg/html"
)

func TestCollect_SingleScript(t *testing.T) {
	doc := html.ParseString("<html><body><script>window.answer = 42;</script></body></html>")
	snippets := Collect(doc)
	require.Len(t, snippets, 1)
	assert.Equal(t, "window.answer = 42;", snippets[0].Code)
	assert.True(t, doc.Node(snippets[0].NodeID).IsElement("script"))
}

func TestCollect_DocumentOrderAndBlankSkipped(t *testing.T) {
	doc := html.ParseString("<head><script>a()</script></head><body><script>  </script><div><script>\n  b()\n</script></div></body>")
	snippets := Collect(doc)
	require.Len(t, snippets, 2)
	assert.Equal(t, "a()", snippets[0].Code)
	assert.Equal(t, "\n  b()\n", snippets[1].Code)
	assert.True(t, snippets[0].NodeID < snippets[1].NodeID)
}

func TestCollect_ConcatenatesDirectTextChildren(t *testing.T) {
	doc := html.NewDocument()
	s := doc.AddElement(doc.Root, "script")
	doc.AddText(s, "let a = 1; ")
	inner := doc.AddElement(s, "span")
	doc.AddText(inner, "ignored")
	doc.AddText(s, " a++;")

	snippets := Collect(doc)
	require.Len(t, snippets, 1)
	assert.Equal(t, "let a = 1;  a++;", snippets[0].Code)
}

func TestCollect_NoScripts(t *testing.T) {
	assert.Empty(t, Collect(html.ParseString("<p>hello</p>")))
}

func TestStubHost_EmptyList(t *testing.T) {
	host := NewStubHost(nil)
	require.NoError(t, host.Execute(nil))
	assert.Empty(t, host.Captured())
}

func TestStubHost_Unsupported(t *testing.T) {
	host := NewStubHost(nil)
	scripts := []Snippet{{NodeID: 2, Code: "console.log('hi')"}}

	err := host.Execute(scripts)
	require.Error(t, err)

	var unsupported *UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, 1, unsupported.ScriptCount)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Equal(t, scripts, host.Captured())
	assert.Empty(t, host.Diagnostics())
}

func TestStubHost_SyntaxDiagnostics(t *testing.T) {
	host := NewStubHost(nil)
	err := host.Execute([]Snippet{
		{NodeID: 3, Code: "let ok = 1;"},
		{NodeID: 7, Code: "function ( {"},
	})
	assert.ErrorIs(t, err, ErrUnsupported)
	diags := host.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, html.NodeID(7), diags[0].NodeID)
	assert.Error(t, diags[0].Err)
}
