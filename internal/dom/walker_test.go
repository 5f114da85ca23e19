package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// recordingVisitor reserves nodes whose tag matches and records calls.
type recordingVisitor struct {
	tag       string
	visited   []*html.Node
	revisits  int
	lastBatch []*html.Node
	mutate    bool
}

func (v *recordingVisitor) Visit(ctx *Context, n *html.Node) (Verdict, error) {
	v.visited = append(v.visited, n)
	if n.Type == html.ElementNode && n.Data == v.tag {
		return Reserve, nil
	}
	return Bypass, nil
}

func (v *recordingVisitor) Revisit(ctx *Context, reserved []*html.Node) (bool, error) {
	v.revisits++
	v.lastBatch = reserved
	return v.mutate, nil
}

func elem(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func container(children ...*html.Node) *html.Node {
	parent := elem("div")
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

func TestWalkReservesInDocumentOrder(t *testing.T) {
	s1, s2, s3 := elem("script"), elem("script"), elem("script")
	inner := container(s2)
	root := container(s1, inner, s3)

	v := &recordingVisitor{tag: "script"}
	mutated, err := Walk(&Context{}, root, v)
	require.NoError(t, err)

	assert.False(t, mutated)
	assert.Equal(t, 1, v.revisits)
	assert.Equal(t, []*html.Node{s1, s2, s3}, v.lastBatch)
}

func TestWalkFirstVisitorClaimsNode(t *testing.T) {
	s1 := elem("script")
	root := container(s1)

	first := &recordingVisitor{tag: "script"}
	second := &recordingVisitor{tag: "script"}
	_, err := Walk(&Context{}, root, first, second)
	require.NoError(t, err)

	assert.Equal(t, 1, first.revisits)
	assert.Equal(t, 0, second.revisits, "claimed nodes are not offered downstream")
}

func TestWalkSkipsRevisitWithoutReservations(t *testing.T) {
	root := container(elem("span"))

	v := &recordingVisitor{tag: "script"}
	mutated, err := Walk(&Context{}, root, v)
	require.NoError(t, err)

	assert.False(t, mutated)
	assert.Equal(t, 0, v.revisits)
}

func TestWalkReportsMutation(t *testing.T) {
	root := container(elem("script"))

	v := &recordingVisitor{tag: "script", mutate: true}
	mutated, err := Walk(&Context{}, root, v)
	require.NoError(t, err)
	assert.True(t, mutated)
}

func TestAttrHelpers(t *testing.T) {
	n := elem("script")
	_, ok := Attr(n, "src")
	assert.False(t, ok)

	SetAttr(n, "src", "http://one.com/foo.js")
	v, ok := Attr(n, "src")
	assert.True(t, ok)
	assert.Equal(t, "http://one.com/foo.js", v)

	SetAttr(n, "src", "http://two.com/foo.js")
	v, _ = Attr(n, "src")
	assert.Equal(t, "http://two.com/foo.js", v)
	assert.Len(t, n.Attr, 1)
}

func TestIsInsignificant(t *testing.T) {
	assert.True(t, IsInsignificant(&html.Node{Type: html.TextNode, Data: "  \n\t"}))
	assert.True(t, IsInsignificant(&html.Node{Type: html.CommentNode, Data: "note"}))
	assert.False(t, IsInsignificant(&html.Node{Type: html.TextNode, Data: "text"}))
	assert.False(t, IsInsignificant(elem("div")))
}

func TestParseAndRenderRoundTrip(t *testing.T) {
	doc, err := ParseDocument(`<html><head></head><body><p>hi</p></body></html>`)
	require.NoError(t, err)

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>hi</p>")
}
