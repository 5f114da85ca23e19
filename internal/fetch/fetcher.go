// Package fetch retrieves external resources for the concat proxy
// endpoint.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/openwidget/rewriter/internal/infrastructure/resilience"
	"github.com/openwidget/rewriter/internal/logging"
)

// Resource is one fetched external resource.
type Resource struct {
	URI         *url.URL
	Body        []byte
	ContentType string
}

// Config holds fetcher limits.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// DefaultConfig returns production-ready fetcher limits.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxBodyBytes: 10 * 1024 * 1024,
	}
}

// Fetcher retrieves resources over HTTP. Each origin host is guarded
// by its own circuit breaker.
type Fetcher struct {
	client   *resty.Client
	breakers *resilience.Group
	limit    int64
	log      *logging.Logger
}

// New creates a fetcher with the provided limits.
func New(cfg Config, log *logging.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	componentLog := log.WithComponent("fetch")
	breakers := resilience.NewGroup(resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			componentLog.Warn("origin breaker state change",
				zap.String("host", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Fetcher{
		client:   client,
		breakers: breakers,
		limit:    cfg.MaxBodyBytes,
		log:      componentLog,
	}
}

// Fetch retrieves one resource. The content type comes from the response
// header, falling back to sniffing the body.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*Resource, error) {
	var res *Resource
	err := f.breakers.Do(u.Host, func() error {
		var err error
		res, err = f.get(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) (*Resource, error) {
	resp, err := f.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch: get %q: %w", u, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch: get %q: status %d", u, resp.StatusCode())
	}
	body := resp.Body()
	if f.limit > 0 && int64(len(body)) > f.limit {
		return nil, fmt.Errorf("fetch: %q exceeds %d byte limit", u, f.limit)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(body).String()
	}
	f.log.Debug("fetched resource",
		zap.String("url", u.String()),
		zap.Int("bytes", len(body)),
		zap.String("content_type", contentType))

	return &Resource{URI: u, Body: body, ContentType: contentType}, nil
}
