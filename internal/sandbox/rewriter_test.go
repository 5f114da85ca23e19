package sandbox

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwidget/rewriter/internal/cache"
	"github.com/openwidget/rewriter/internal/logging"
)

// countingTransformer records invocations and returns a fixed outcome.
type countingTransformer struct {
	calls  int
	result *Result
	err    error
	panics bool
}

func (c *countingTransformer) Transform(ctx context.Context, docURL *url.URL, content string) (*Result, error) {
	c.calls++
	if c.panics {
		panic("transformer exploded")
	}
	return c.result, c.err
}

func docURL(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://example.com/widget.xml")
	require.NoError(t, err)
	return u
}

func TestRewriteCachesByContent(t *testing.T) {
	tr := &countingTransformer{result: &Result{Body: "<p>safe</p>"}}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	first := r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	second := r.Rewrite(context.Background(), docURL(t), "<p>input</p>")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, tr.calls, "identical bytes must not re-invoke the transformer")
	assert.Contains(t, first, "<p>safe</p>")
	assert.Contains(t, first, "sandbox___.enable()")
}

func TestRewriteDistinctContentMisses(t *testing.T) {
	tr := &countingTransformer{result: &Result{Body: "<p>safe</p>"}}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	r.Rewrite(context.Background(), docURL(t), "<p>one</p>")
	r.Rewrite(context.Background(), docURL(t), "<p>two</p>")
	assert.Equal(t, 2, tr.calls)
}

func TestRewriteWithoutProviderAlwaysMisses(t *testing.T) {
	tr := &countingTransformer{result: &Result{Body: "<p>safe</p>"}}
	r := NewRewriter(tr, nil, logging.NewNop())

	r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	assert.Equal(t, 2, tr.calls)
}

func TestRewriteFailureRendersVisibleMessages(t *testing.T) {
	tr := &countingTransformer{err: &Failure{Messages: []Message{
		{Level: LevelError, Text: "script 1: unexpected token <"},
		{Level: LevelLint, Text: "nitpick"},
	}}}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	out := r.Rewrite(context.Background(), docURL(t), "<script>broken(</script>")
	assert.Contains(t, out, "ERROR script 1: unexpected token &lt;")
	assert.NotContains(t, out, "display: none")
	assert.NotContains(t, out, "nitpick", "lint-grade messages are filtered out")

	// Failures are not cached.
	r.Rewrite(context.Background(), docURL(t), "<script>broken(</script>")
	assert.Equal(t, 2, tr.calls)
}

func TestRewriteUnexpectedErrorFailsSafe(t *testing.T) {
	tr := &countingTransformer{err: errors.New("io: connection reset")}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	out := r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	assert.Empty(t, out, "unexpected failures must yield empty content")
}

func TestRewritePanicFailsSafe(t *testing.T) {
	tr := &countingTransformer{panics: true}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	out := r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	assert.Empty(t, out)
}

func TestRewriteSuccessHidesHistoricalMessages(t *testing.T) {
	tr := &countingTransformer{result: &Result{
		Body:     "<p>safe</p>",
		Messages: []Message{{Level: LevelWarning, Text: "legacy API"}},
	}}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop())

	out := r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	assert.Contains(t, out, "display: none")
	assert.Contains(t, out, "WARNING legacy API")
}

// countingObserver records lifecycle events.
type countingObserver struct {
	hits, misses, failures int
}

func (o *countingObserver) SandboxCacheHit()    { o.hits++ }
func (o *countingObserver) SandboxCacheMiss()   { o.misses++ }
func (o *countingObserver) TransformerFailure() { o.failures++ }

func TestRewriteReportsObserverEvents(t *testing.T) {
	tr := &countingTransformer{result: &Result{Body: "<p>safe</p>"}}
	obs := &countingObserver{}
	r := NewRewriter(tr, cache.NewMemoryProvider(10), logging.NewNop()).WithObserver(obs)

	r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	r.Rewrite(context.Background(), docURL(t), "<p>input</p>")
	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 0, obs.failures)

	tr.err = &Failure{Messages: []Message{{Level: LevelError, Text: "boom"}}}
	r.Rewrite(context.Background(), docURL(t), "<p>other</p>")
	assert.Equal(t, 1, obs.failures)
}

func TestSandboxerSanitizes(t *testing.T) {
	s := NewSandboxer()
	result, err := s.Transform(context.Background(), docURL(t), `<p onclick="evil()">hi</p>`)
	require.NoError(t, err)
	assert.Contains(t, result.Body, "<p>hi</p>")
	assert.NotContains(t, result.Body, "onclick")
}

func TestSandboxerReportsScriptErrors(t *testing.T) {
	s := NewSandboxer()
	_, err := s.Transform(context.Background(), docURL(t), `<script>function {</script>`)
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.NotEmpty(t, failure.Messages)
	assert.Equal(t, LevelError, failure.Messages[0].Level)
}

func TestSandboxerAcceptsValidScripts(t *testing.T) {
	s := NewSandboxer()
	result, err := s.Transform(context.Background(), docURL(t), `<script>var x = 1;</script><p>hi</p>`)
	require.NoError(t, err)
	assert.Contains(t, result.Body, "<p>hi</p>")
}
