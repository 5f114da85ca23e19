// Package uri builds and resolves proxied resource URIs: single-resource
// proxy links and concatenated batch links, with per-container base URLs.
package uri

import (
	"fmt"
	"net/url"
	"strconv"
)

// SplitParam marks a concatenated URI whose resources are loaded as one
// payload but evaluated individually at their original positions.
const SplitParam = "SPLIT"

// ContainerParam carries the container a concatenated URI was built for.
const ContainerParam = "container"

// Batch is an ordered group of resources to concatenate. Merge selects
// single-replacement output; otherwise the batch is split.
type Batch struct {
	Resources []*url.URL
	Merge     bool
}

// Data is the result of concatenating one batch: the URI to load, and,
// for split batches, a per-resource inline snippet.
type Data struct {
	URI      *url.URL
	snippets map[string]string
}

// Snippet returns the inline payload for a resource of a split batch.
func (d Data) Snippet(resource *url.URL) (string, bool) {
	s, ok := d.snippets[resource.String()]
	return s, ok
}

// Manager turns ordered resource batches into concatenated URIs.
// Results preserve input order: position is part of program semantics.
type Manager interface {
	Make(container string, batches []Batch) []Data
}

// ConcatManager builds concatenated URIs against per-container bases.
type ConcatManager struct {
	resolver *Resolver
}

// NewConcatManager creates a manager resolving bases through resolver.
func NewConcatManager(resolver *Resolver) *ConcatManager {
	return &ConcatManager{resolver: resolver}
}

// Make builds one concatenated URI per batch. Each resource becomes a
// query parameter numbered by its 1-based position. Split batches carry
// the split marker and a snippet per resource; without the resource body
// available here, the snippet defaults to the resource URI string.
func (m *ConcatManager) Make(container string, batches []Batch) []Data {
	results := make([]Data, 0, len(batches))
	for _, batch := range batches {
		base := *m.resolver.ConcatBase(container)
		q := base.Query()
		for i, r := range batch.Resources {
			q.Set(strconv.Itoa(i+1), r.String())
		}
		q.Set(ContainerParam, container)

		var snippets map[string]string
		if !batch.Merge {
			q.Set(SplitParam, "1")
			snippets = make(map[string]string, len(batch.Resources))
			for _, r := range batch.Resources {
				snippets[r.String()] = r.String()
			}
		}
		base.RawQuery = q.Encode()
		results = append(results, Data{URI: &base, snippets: snippets})
	}
	return results
}

// Parsed is a concatenated URI resolved back into its constituents.
type Parsed struct {
	Resources []*url.URL
	Split     bool
	Container string
}

// Parse resolves an incoming concatenated URI back into the ordered list
// of resources it was built from. The mapping is loss-less: parameters
// numbered 1..N round-trip to the exact absolute URIs used to build them,
// and a gap in the numbering is an error.
func Parse(u *url.URL) (*Parsed, error) {
	q := u.Query()

	numbered := 0
	for key := range q {
		if n, err := strconv.Atoi(key); err == nil && n > 0 {
			numbered++
		}
	}
	if numbered == 0 {
		return nil, fmt.Errorf("uri: no numbered resources in %q", u)
	}

	resources := make([]*url.URL, 0, numbered)
	for i := 1; i <= numbered; i++ {
		raw := q.Get(strconv.Itoa(i))
		if raw == "" {
			return nil, fmt.Errorf("uri: missing resource %d of %d in %q", i, numbered, u)
		}
		r, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("uri: resource %d unparsable: %w", i, err)
		}
		resources = append(resources, r)
	}

	return &Parsed{
		Resources: resources,
		Split:     q.Get(SplitParam) == "1",
		Container: q.Get(ContainerParam),
	}, nil
}
