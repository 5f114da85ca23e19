// Package dom provides the document walk abstraction used by rewriters.
//
// A document tree is walked once in pre-order. Every node is offered to
// each visitor, which returns a verdict: Bypass leaves the node alone,
// Reserve claims it for the visitor's batch phase. After the walk, each
// visitor that reserved nodes gets exactly one Revisit call with its
// reserved nodes in document order, and may mutate the tree in place.
package dom

import (
	"net/url"

	"golang.org/x/net/html"

	"github.com/openwidget/rewriter/internal/auth"
	"github.com/openwidget/rewriter/internal/logging"
)

// Verdict is the result of offering a node to a visitor.
type Verdict int

const (
	// Bypass leaves the node untouched.
	Bypass Verdict = iota
	// Reserve claims the node for the visitor's batch phase.
	Reserve
)

// Context carries per-document state shared by all visitors of one walk.
type Context struct {
	// Container identifies the deployment the document is rendered for.
	Container string
	// DocURL is the URL the document was fetched from, when known.
	DocURL *url.URL
	// Token is the caller identity, possibly anonymous.
	Token auth.Token
	// Log receives rewrite diagnostics.
	Log *logging.Logger
}

// Visitor inspects nodes during the walk and mutates reserved ones after it.
type Visitor interface {
	// Visit is called for every node in pre-order. It must not mutate
	// the tree.
	Visit(ctx *Context, n *html.Node) (Verdict, error)

	// Revisit is called once after the walk with all nodes this visitor
	// reserved, in document order, possibly spanning multiple parents.
	// It returns whether it mutated the document.
	Revisit(ctx *Context, reserved []*html.Node) (bool, error)
}
