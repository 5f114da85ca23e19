package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openwidget/rewriter/internal/auth"
	"github.com/openwidget/rewriter/internal/dom"
	"github.com/openwidget/rewriter/internal/fetch"
	"github.com/openwidget/rewriter/internal/infrastructure/monitoring"
	"github.com/openwidget/rewriter/internal/logging"
	"github.com/openwidget/rewriter/internal/rewrite"
	"github.com/openwidget/rewriter/internal/rewrite/uri"
	"github.com/openwidget/rewriter/internal/sandbox"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	manager  *uri.ConcatManager
	resolver *uri.Resolver
	fetcher  *fetch.Fetcher
	sandbox  *sandbox.Rewriter
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(
	resolver *uri.Resolver,
	fetcher *fetch.Fetcher,
	sandboxRewriter *sandbox.Rewriter,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		manager:  uri.NewConcatManager(resolver),
		resolver: resolver,
		fetcher:  fetcher,
		sandbox:  sandboxRewriter,
		metrics:  metrics,
		log:      log.WithComponent("http"),
	}
}

// Root handles health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "resource-rewriter",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	h.metrics.UpdateUptime()
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// rewriteRequest carries a document plus its per-request rewrite policy.
type rewriteRequest struct {
	HTML      string   `json:"html" binding:"required"`
	Container string   `json:"container"`
	URL       string   `json:"url"`
	Include   string   `json:"include"`
	Exclude   string   `json:"exclude"`
	Tags      []string `json:"tags"`
	Expires   int      `json:"expires"`
	SplitJS   bool     `json:"split_js"`
}

// Rewrite runs the concatenation visitors over a posted document and
// returns the rewritten markup.
func (h *Handlers) Rewrite(c *gin.Context) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Container == "" {
		req.Container = auth.DefaultContainer
	}
	tags := req.Tags
	if len(tags) == 0 {
		tags = rewrite.DefaultTags
	}

	feature, err := rewrite.NewFeature(req.Include, req.Exclude, tags, req.Expires, req.SplitJS)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var docURL *url.URL
	if req.URL != "" {
		docURL, err = url.Parse(req.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad document url: %v", err)})
			return
		}
	}

	doc, err := dom.ParseDocument(req.HTML)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unparsable document: %v", err)})
		return
	}

	ctx := &dom.Context{
		Container: req.Container,
		DocURL:    docURL,
		Token:     auth.NewAnonymousTokenFor(req.Container, 0, req.URL),
		Log:       h.log,
	}
	mutated, err := dom.Walk(ctx, doc,
		rewrite.NewScriptConcat(feature, h.manager),
		rewrite.NewStylesheetConcat(feature, h.manager),
	)
	if err != nil {
		h.metrics.RecordRewrite("document", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := req.HTML
	if mutated {
		out, err = dom.Render(doc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		h.metrics.RecordRewrite("document", "mutated")
	} else {
		h.metrics.RecordRewrite("document", "unchanged")
	}

	if feature.Expires() > 0 {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", feature.Expires()))
	}
	c.JSON(http.StatusOK, gin.H{"html": out, "mutated": mutated})
}

// Concat serves a concatenated resource request: it resolves the
// incoming URI back into its constituent resources, fetches each in
// order, and streams the joined payload.
func (h *Handlers) Concat(c *gin.Context) {
	parsed, err := uri.Parse(c.Request.URL)
	if err != nil {
		h.metrics.ConcatServeErrors.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body strings.Builder
	contentType := ""
	for _, resource := range parsed.Resources {
		res, err := h.fetcher.Fetch(c.Request.Context(), resource)
		if err != nil {
			h.metrics.ConcatServeErrors.Inc()
			h.log.Warn("concat fetch failed", zap.String("url", resource.String()), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if contentType == "" {
			contentType = res.ContentType
		}
		// Boundary markers keep per-resource failures debuggable
		// after concatenation.
		fmt.Fprintf(&body, "/* ---- Start %s ---- */\n", resource)
		body.Write(res.Body)
		fmt.Fprintf(&body, "\n/* ---- End %s ---- */\n", resource)
	}
	if contentType == "" {
		contentType = "application/javascript"
	}

	h.metrics.RunsConcatenated.Inc()
	h.metrics.ResourcesBatched.Add(float64(len(parsed.Resources)))
	writeBody(c, contentType, []byte(body.String()))
}

// sandboxRequest carries a document for the sandboxing transformer.
type sandboxRequest struct {
	HTML string `json:"html" binding:"required"`
	URL  string `json:"url"`
}

// Sandbox transforms a posted document through the caching sandbox
// wrapper.
func (h *Handlers) Sandbox(c *gin.Context) {
	var req sandboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var docURL *url.URL
	if req.URL != "" {
		u, err := url.Parse(req.URL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad document url: %v", err)})
			return
		}
		docURL = u
	}

	out := h.sandbox.Rewrite(c.Request.Context(), docURL, req.HTML)
	c.JSON(http.StatusOK, gin.H{"html": out})
}
