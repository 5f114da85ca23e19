package sandbox

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dop251/goja"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/openwidget/rewriter/internal/dom"
)

// Sandboxer is the default Transformer: it compiles every inline script
// to surface syntax errors as diagnostics, then sanitizes the markup.
// Scripts that fail to compile fail the whole transformation.
type Sandboxer struct {
	policy *bluemonday.Policy
}

// NewSandboxer creates a transformer with a user-generated-content
// sanitizing policy.
func NewSandboxer() *Sandboxer {
	return &Sandboxer{policy: bluemonday.UGCPolicy()}
}

// Transform checks and rewrites one document. Compile errors in inline
// scripts are reported as a Failure; lint-grade findings ride along on
// the successful result.
func (s *Sandboxer) Transform(ctx context.Context, docURL *url.URL, content string) (*Result, error) {
	doc, err := dom.ParseDocument(content)
	if err != nil {
		return nil, &Failure{Messages: []Message{{
			Level: LevelError,
			Text:  fmt.Sprintf("unparsable document: %v", err),
		}}}
	}

	var messages []Message
	for i, src := range inlineScripts(doc) {
		if _, cerr := goja.Compile(fmt.Sprintf("inline-%d", i+1), src, false); cerr != nil {
			messages = append(messages, Message{
				Level: LevelError,
				Text:  fmt.Sprintf("script %d: %v", i+1, cerr),
			})
		}
	}
	if len(messages) > 0 {
		return nil, &Failure{Messages: messages}
	}

	return &Result{Body: s.policy.Sanitize(content)}, nil
}

// inlineScripts collects the text of every <script> without a src.
func inlineScripts(doc *html.Node) []string {
	var scripts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			if _, external := dom.Attr(n, "src"); !external {
				if body := dom.TextContent(n); body != "" {
					scripts = append(scripts, body)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return scripts
}
