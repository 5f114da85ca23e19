// Package rewrite implements the resource concatenation engine: policy
// configuration and the visitors that batch sibling script/stylesheet
// references into concatenated proxy loads.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Feature is the immutable rewrite policy for one request context. It is
// resolved once and may be shared across concurrent document rewrites.
type Feature struct {
	include *regexp.Regexp
	exclude *regexp.Regexp // nil: never excludes
	tags    map[string]struct{}
	expires int
	splitJS bool
}

// NewFeature compiles a rewrite policy. An empty include pattern matches
// every URI; an empty exclude pattern never excludes.
func NewFeature(include, exclude string, tags []string, expiresSeconds int, splitJS bool) (*Feature, error) {
	inc, err := regexp.Compile(include)
	if err != nil {
		return nil, fmt.Errorf("rewrite: bad include pattern: %w", err)
	}
	var exc *regexp.Regexp
	if exclude != "" {
		exc, err = regexp.Compile(exclude)
		if err != nil {
			return nil, fmt.Errorf("rewrite: bad exclude pattern: %w", err)
		}
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[strings.ToLower(tag)] = struct{}{}
	}
	return &Feature{
		include: inc,
		exclude: exc,
		tags:    tagSet,
		expires: expiresSeconds,
		splitJS: splitJS,
	}, nil
}

// DefaultTags are the tag names rewritten when none are configured.
var DefaultTags = []string{"script", "link"}

// MatchesURI reports whether a resource URI is in policy scope:
// included and not excluded.
func (f *Feature) MatchesURI(uri string) bool {
	if !f.include.MatchString(uri) {
		return false
	}
	if f.exclude != nil && f.exclude.MatchString(uri) {
		return false
	}
	return true
}

// IncludesTag reports whether a tag name is in policy scope.
func (f *Feature) IncludesTag(tag string) bool {
	_, ok := f.tags[strings.ToLower(tag)]
	return ok
}

// Expires returns the TTL, in seconds, for rewritten resource loads.
func (f *Feature) Expires() int { return f.expires }

// SplitJS reports whether script batches use split output. Stylesheet
// rewriting ignores this flag.
func (f *Feature) SplitJS() bool { return f.splitJS }
