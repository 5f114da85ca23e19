package rewrite

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/openwidget/rewriter/internal/dom"
	"github.com/openwidget/rewriter/internal/rewrite/uri"
)

// Concat batches sibling resource references into concatenated proxy
// loads. One instance handles one resource kind; scripts and stylesheets
// differ in required attributes, the attribute carrying the URI, and
// whether split output is honored.
type Concat struct {
	kind    kind
	feature *Feature
	manager uri.Manager
	split   bool
}

type kind int

const (
	kindScript kind = iota
	kindStylesheet
)

// NewScriptConcat creates the visitor for <script src> references.
// Split output follows the feature's split flag.
func NewScriptConcat(feature *Feature, manager uri.Manager) *Concat {
	return &Concat{
		kind:    kindScript,
		feature: feature,
		manager: manager,
		split:   feature.SplitJS(),
	}
}

// NewStylesheetConcat creates the visitor for stylesheet <link>
// references. Stylesheets never split: a sheet cannot be evaluated from
// an inline placeholder the way a script can.
func NewStylesheetConcat(feature *Feature, manager uri.Manager) *Concat {
	return &Concat{
		kind:    kindStylesheet,
		feature: feature,
		manager: manager,
	}
}

// Visit decides run membership for one node. A node is reserved only if
// its entire run is eligible: a single malformed or policy-excluded
// member bypasses every member, so a broken run is never partially
// concatenated.
func (v *Concat) Visit(ctx *dom.Context, n *html.Node) (dom.Verdict, error) {
	if !v.candidate(n) {
		return dom.Bypass, nil
	}
	run := v.runFor(n)
	// A lone reference gains nothing from merging. Split mode still
	// reserves it: the loader/placeholder shape is uniform either way.
	if !v.split && len(run) < 2 {
		return dom.Bypass, nil
	}
	for _, member := range run {
		if _, ok := v.resource(member); !ok {
			return dom.Bypass, nil
		}
	}
	return dom.Reserve, nil
}

// Revisit re-derives run boundaries from the reserved nodes, requests
// concatenated URIs for all eligible runs in one manager call, and
// mutates the document. Runs that fail re-validation are left untouched.
func (v *Concat) Revisit(ctx *dom.Context, reserved []*html.Node) (bool, error) {
	type run struct {
		nodes     []*html.Node
		resources []*url.URL
	}

	var runs []run
	for _, group := range v.groupRuns(reserved) {
		resources := make([]*url.URL, 0, len(group))
		ok := true
		for _, n := range group {
			r, valid := v.resource(n)
			if !valid {
				ok = false
				break
			}
			resources = append(resources, r)
		}
		if ok {
			runs = append(runs, run{nodes: group, resources: resources})
		}
	}
	if len(runs) == 0 {
		return false, nil
	}

	batches := make([]uri.Batch, len(runs))
	for i, r := range runs {
		batches[i] = uri.Batch{Resources: r.resources, Merge: !v.split}
	}
	results := v.manager.Make(ctx.Container, batches)

	for i, r := range runs {
		if v.split {
			v.mutateSplit(r.nodes, r.resources, results[i])
		} else {
			v.mutateMerge(r.nodes, results[i])
		}
	}
	return true, nil
}

// candidate reports whether a node has the shape this kind rewrites.
func (v *Concat) candidate(n *html.Node) bool {
	if n.Type != html.ElementNode || !v.feature.IncludesTag(n.Data) {
		return false
	}
	switch v.kind {
	case kindScript:
		if n.Data != "script" {
			return false
		}
		src, ok := dom.Attr(n, "src")
		return ok && src != ""
	case kindStylesheet:
		if n.Data != "link" {
			return false
		}
		href, ok := dom.Attr(n, "href")
		if !ok || href == "" {
			return false
		}
		rel, _ := dom.Attr(n, "rel")
		typ, _ := dom.Attr(n, "type")
		return strings.EqualFold(rel, "stylesheet") || strings.EqualFold(typ, "text/css")
	}
	return false
}

// resource parses and policy-checks a candidate's URI.
func (v *Concat) resource(n *html.Node) (*url.URL, bool) {
	raw, _ := dom.Attr(n, v.uriAttr())
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if !v.feature.MatchesURI(u.String()) {
		return nil, false
	}
	return u, true
}

func (v *Concat) uriAttr() string {
	if v.kind == kindScript {
		return "src"
	}
	return "href"
}

// runFor collects the candidate run containing n. Without split mode the
// run is bounded by any significant non-candidate sibling: merging
// replaces several positions with one, which must not reorder anything
// interposed. With split mode every candidate keeps a placeholder at its
// original position, so interposed siblings don't break the run.
func (v *Concat) runFor(n *html.Node) []*html.Node {
	if n.Parent == nil {
		return []*html.Node{n}
	}
	if v.split {
		var run []*html.Node
		for sib := n.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
			if v.candidate(sib) {
				run = append(run, sib)
			}
		}
		return run
	}

	first := n
	for prev := prevSignificant(first); prev != nil && v.candidate(prev); prev = prevSignificant(first) {
		first = prev
	}
	var run []*html.Node
	for sib := first; sib != nil && v.candidate(sib); sib = nextSignificant(sib) {
		run = append(run, sib)
	}
	return run
}

// groupRuns re-derives run boundaries from the reserved list, which is in
// document order. Split runs group by parent; merge runs additionally
// require sibling contiguity.
func (v *Concat) groupRuns(reserved []*html.Node) [][]*html.Node {
	if v.split {
		byParent := make(map[*html.Node]int)
		var groups [][]*html.Node
		for _, n := range reserved {
			if i, ok := byParent[n.Parent]; ok {
				groups[i] = append(groups[i], n)
				continue
			}
			byParent[n.Parent] = len(groups)
			groups = append(groups, []*html.Node{n})
		}
		return groups
	}

	var groups [][]*html.Node
	var current []*html.Node
	for _, n := range reserved {
		if len(current) > 0 {
			last := current[len(current)-1]
			if last.Parent == n.Parent && nextSignificant(last) == n {
				current = append(current, n)
				continue
			}
			groups = append(groups, current)
		}
		current = []*html.Node{n}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// mutateMerge deletes the run and inserts one node carrying the
// concatenated URI at the first member's position.
func (v *Concat) mutateMerge(run []*html.Node, data uri.Data) {
	parent := run[0].Parent
	parent.InsertBefore(v.newResourceNode(data.URI.String()), run[0])
	for _, n := range run {
		parent.RemoveChild(n)
	}
}

// mutateSplit inserts one loader node before the first member, then
// substitutes each member in place with an inline placeholder holding
// its snippet. Member count is preserved; total grows by the loader.
func (v *Concat) mutateSplit(run []*html.Node, resources []*url.URL, data uri.Data) {
	parent := run[0].Parent
	parent.InsertBefore(v.newResourceNode(data.URI.String()), run[0])
	for i, n := range run {
		snippet, ok := data.Snippet(resources[i])
		if !ok {
			snippet = resources[i].String()
		}
		placeholder := &html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
		}
		placeholder.AppendChild(&html.Node{Type: html.TextNode, Data: snippet})
		parent.InsertBefore(placeholder, n)
		parent.RemoveChild(n)
	}
}

// newResourceNode builds the replacement node for this kind.
func (v *Concat) newResourceNode(concatURI string) *html.Node {
	if v.kind == kindScript {
		n := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script}
		dom.SetAttr(n, "src", concatURI)
		return n
	}
	n := &html.Node{Type: html.ElementNode, Data: "link", DataAtom: atom.Link}
	dom.SetAttr(n, "rel", "stylesheet")
	dom.SetAttr(n, "type", "text/css")
	dom.SetAttr(n, "href", concatURI)
	return n
}

func prevSignificant(n *html.Node) *html.Node {
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if !dom.IsInsignificant(sib) {
			return sib
		}
	}
	return nil
}

func nextSignificant(n *html.Node) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if !dom.IsInsignificant(sib) {
			return sib
		}
	}
	return nil
}
