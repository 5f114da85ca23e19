package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Walk offers every node under root to the visitors in pre-order, then
// runs each visitor's batch phase over the nodes it reserved. A node is
// claimed by the first visitor that returns Reserve. Walk reports whether
// any visitor mutated the document.
func Walk(ctx *Context, root *html.Node, visitors ...Visitor) (bool, error) {
	reserved := make([][]*html.Node, len(visitors))

	var err error
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if err != nil {
			return
		}
		for i, v := range visitors {
			verdict, verr := v.Visit(ctx, n)
			if verr != nil {
				err = verr
				return
			}
			if verdict == Reserve {
				reserved[i] = append(reserved[i], n)
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if err != nil {
		return false, err
	}

	mutated := false
	for i, v := range visitors {
		if len(reserved[i]) == 0 {
			continue
		}
		m, rerr := v.Revisit(ctx, reserved[i])
		if rerr != nil {
			return mutated, rerr
		}
		mutated = mutated || m
	}
	return mutated, nil
}

// Attr returns the value of the named attribute, and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// IsInsignificant reports whether a node carries no document semantics:
// comments and whitespace-only text.
func IsInsignificant(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	}
	return false
}

// TextContent returns the concatenated text of a node's descendants.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ParseDocument parses an HTML document from a string.
func ParseDocument(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// Render serializes a node back to HTML.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
