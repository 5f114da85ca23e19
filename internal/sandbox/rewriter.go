// Package sandbox wraps an opaque content transformer with a
// content-addressed cache and fail-safe output handling. Transforming a
// document is expensive; identical input bytes always produce identical
// output, so results are memoized under a hash of the input.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/openwidget/rewriter/internal/cache"
	"github.com/openwidget/rewriter/internal/logging"
	"github.com/openwidget/rewriter/internal/shared/utils"
	"go.uber.org/zap"
)

// CacheName is the provider cache name for transformed documents.
const CacheName = "sandboxedDocuments"

// Level is the severity of a transformer diagnostic.
type Level int

const (
	LevelLint Level = iota
	LevelWarning
	LevelError
)

// String returns the level name used in rendered diagnostics.
func (l Level) String() string {
	switch l {
	case LevelLint:
		return "LINT"
	case LevelWarning:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Message is one transformer diagnostic.
type Message struct {
	Level Level
	Text  string
}

// Result is a successful transformation: the rewritten body fragment and
// any non-fatal diagnostics collected along the way.
type Result struct {
	Body     string
	Messages []Message
}

// Failure is a reported (non-crash) transformation failure carrying the
// transformer's diagnostics.
type Failure struct {
	Messages []Message
}

func (f *Failure) Error() string {
	return fmt.Sprintf("sandbox: transformation failed with %d messages", len(f.Messages))
}

// Transformer rewrites untrusted document content into a sandboxed form.
// Implementations may block; their latency is why results are cached.
type Transformer interface {
	Transform(ctx context.Context, docURL *url.URL, content string) (*Result, error)
}

// Observer receives sandbox lifecycle events for metrics collection.
type Observer interface {
	SandboxCacheHit()
	SandboxCacheMiss()
	TransformerFailure()
}

// Rewriter is the caching, fail-safe wrapper around a Transformer.
type Rewriter struct {
	transformer Transformer
	cache       cache.Cache
	observer    Observer
	log         *logging.Logger
}

// NewRewriter wraps transformer with caching from provider. A nil
// provider degrades to always-miss behavior.
func NewRewriter(transformer Transformer, provider cache.Provider, log *logging.Logger) *Rewriter {
	return &Rewriter{
		transformer: transformer,
		cache:       cache.FromProvider(provider, CacheName),
		log:         log.WithComponent("sandbox"),
	}
}

// WithObserver attaches a lifecycle observer and returns the rewriter.
func (r *Rewriter) WithObserver(o Observer) *Rewriter {
	r.observer = o
	return r
}

// Rewrite transforms a document, returning a complete output document.
// Identical input bytes hit the cache and skip the transformer. A
// reported transformer failure yields a visible diagnostic document and
// is not cached. Any unexpected crash yields empty content: fail-safe
// output takes priority over diagnostics.
func (r *Rewriter) Rewrite(ctx context.Context, docURL *url.URL, content string) (out string) {
	key := utils.Checksum([]byte(content))

	if cached, ok := r.cache.Get(key); ok {
		if fragment, ok := cached.(string); ok {
			r.log.Debug("cache hit", zap.String("key", utils.ShortChecksum(key)))
			if r.observer != nil {
				r.observer.SandboxCacheHit()
			}
			return wrapDocument(fragment)
		}
	}
	if r.observer != nil {
		r.observer.SandboxCacheMiss()
	}

	// Output stays empty unless the transformation fully commits.
	safe := false
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("transformer panicked", zap.Any("panic", rec))
		}
		if !safe {
			out = ""
			if r.observer != nil {
				r.observer.TransformerFailure()
			}
		}
	}()

	result, err := r.transformer.Transform(ctx, docURL, content)
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) {
			r.log.Info("transformation failed",
				zap.String("key", utils.ShortChecksum(key)),
				zap.Int("messages", len(failure.Messages)))
			if r.observer != nil {
				r.observer.TransformerFailure()
			}
			out = wrapDocument(renderMessages(failure.Messages, true))
			safe = true
			return out
		}
		r.log.Error("transformer error", zap.Error(err))
		return ""
	}

	fragment := containerFragment(result.Body, result.Messages)
	r.cache.Put(key, fragment)
	out = wrapDocument(fragment)
	safe = true
	return out
}

// containerFragment assembles the transformed body, the sandbox runtime
// hook, and an invisible list of historical diagnostics.
func containerFragment(body string, messages []Message) string {
	var b strings.Builder
	b.WriteString(`<div id="sandboxed-output" class="s___" style="position: relative;">`)
	b.WriteString(body)
	b.WriteString(`<script type="text/javascript">sandbox___.enable()</script>`)
	b.WriteString(renderMessages(messages, false))
	b.WriteString(`</div>`)
	return b.String()
}

// renderMessages renders diagnostics of at least warning severity as a
// message list, hidden unless visible is set.
func renderMessages(messages []Message, visible bool) string {
	var b strings.Builder
	if visible {
		b.WriteString(`<ul class="sandbox-messages">`)
	} else {
		b.WriteString(`<ul class="sandbox-messages" style="display: none">`)
	}
	for _, m := range messages {
		if m.Level < LevelWarning {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(m.Level.String())
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(m.Text))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

// wrapDocument wraps a fragment into a complete, minimal document.
func wrapDocument(fragment string) string {
	return "<html><head></head><body>" + fragment + "</body></html>"
}
