package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwidget/rewriter/internal/cache"
	"github.com/openwidget/rewriter/internal/fetch"
	"github.com/openwidget/rewriter/internal/infrastructure/monitoring"
	"github.com/openwidget/rewriter/internal/logging"
	"github.com/openwidget/rewriter/internal/rewrite/uri"
	"github.com/openwidget/rewriter/internal/sandbox"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver, err := uri.NewResolver("http://test.com/proxy", "http://test.com/concat")
	require.NoError(t, err)

	log := logging.NewNop()
	metrics := monitoring.NewMetricsWithRegistry(prometheus.NewRegistry())
	fetcher := fetch.New(fetch.DefaultConfig(), log)
	sb := sandbox.NewRewriter(sandbox.NewSandboxer(), cache.NewMemoryProvider(10), log)

	h := NewHandlers(resolver, fetcher, sb, metrics, log)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/api/rewrite", h.Rewrite)
	router.POST("/api/sandbox", h.Sandbox)
	router.GET("/concat", h.Concat)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRewriteEndpointMergesScripts(t *testing.T) {
	router := testRouter(t)

	html := `<html><head></head><body>` +
		`<script src="http://one.com/foo.js"></script>` +
		`<script src="http://two.com/foo.js"></script>` +
		`<script src="http://three.com/foo.js"></script>` +
		`</body></html>`
	w := postJSON(t, router, "/api/rewrite", gin.H{"html": html})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		HTML    string `json:"html"`
		Mutated bool   `json:"mutated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Mutated)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	require.NoError(t, err)

	scripts := doc.Find("script")
	require.Equal(t, 1, scripts.Length())

	src, _ := scripts.Attr("src")
	concatURL, err := url.Parse(src)
	require.NoError(t, err)
	parsed, err := uri.Parse(concatURL)
	require.NoError(t, err)
	require.Len(t, parsed.Resources, 3)
	assert.Equal(t, "http://one.com/foo.js", parsed.Resources[0].String())
	assert.Equal(t, "http://two.com/foo.js", parsed.Resources[1].String())
	assert.Equal(t, "http://three.com/foo.js", parsed.Resources[2].String())
}

func TestRewriteEndpointHonorsExclude(t *testing.T) {
	router := testRouter(t)

	html := `<html><head></head><body>` +
		`<script src="http://one.com/foo.js"></script>` +
		`<script src="http://two.com/foo.js"></script>` +
		`</body></html>`
	w := postJSON(t, router, "/api/rewrite", gin.H{"html": html, "exclude": ".*two.*"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		HTML    string `json:"html"`
		Mutated bool   `json:"mutated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Mutated)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("script").Length())
}

func TestRewriteEndpointSetsCacheControl(t *testing.T) {
	router := testRouter(t)

	w := postJSON(t, router, "/api/rewrite", gin.H{"html": "<p>hi</p>", "expires": 3600})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
}

func TestRewriteEndpointRejectsBadPattern(t *testing.T) {
	router := testRouter(t)

	w := postJSON(t, router, "/api/rewrite", gin.H{"html": "<p>hi</p>", "include": "["})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConcatEndpointJoinsResourcesInOrder(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		switch r.URL.Path {
		case "/a.js":
			w.Write([]byte("var a = 1;"))
		case "/b.js":
			w.Write([]byte("var b = 2;"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	router := testRouter(t)
	target := "/concat?1=" + url.QueryEscape(backend.URL+"/a.js") +
		"&2=" + url.QueryEscape(backend.URL+"/b.js")
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	aPos := strings.Index(body, "var a = 1;")
	bPos := strings.Index(body, "var b = 2;")
	require.GreaterOrEqual(t, aPos, 0)
	require.GreaterOrEqual(t, bPos, 0)
	assert.Less(t, aPos, bPos, "concatenation order is execution order")
	assert.Contains(t, w.Header().Get("Content-Type"), "javascript")
}

func TestConcatEndpointRejectsGappedNumbering(t *testing.T) {
	router := testRouter(t)
	req := httptest.NewRequest("GET", "/concat?1=http://one.com/a.js&3=http://three.com/c.js", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConcatEndpointFetchFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer backend.Close()

	router := testRouter(t)
	req := httptest.NewRequest("GET", "/concat?1="+url.QueryEscape(backend.URL+"/missing.js"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSandboxEndpoint(t *testing.T) {
	router := testRouter(t)

	w := postJSON(t, router, "/api/sandbox", gin.H{"html": `<p onclick="evil()">hi</p>`})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		HTML string `json:"html"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.HTML, "<p>hi</p>")
	assert.NotContains(t, resp.HTML, "onclick")
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/", "/health"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
