package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// writeBody writes a response body, gzip-encoded when the client
// accepts it.
func writeBody(c *gin.Context, contentType string, body []byte) {
	if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		c.Data(http.StatusOK, contentType, body)
		return
	}

	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	gz := gzip.NewWriter(c.Writer)
	defer gz.Close()
	gz.Write(body)
}
