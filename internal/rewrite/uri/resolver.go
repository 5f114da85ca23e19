package uri

import (
	"fmt"
	"net/url"
	"os"

	"github.com/goccy/go-yaml"
)

// Bases holds the proxy and concat endpoint bases for one deployment.
type Bases struct {
	Proxy  *url.URL
	Concat *url.URL
}

// Resolver looks up proxy/concat bases per container, falling back to
// system-wide defaults when a container has no override. Lookups are
// pure reads; a resolver is safe for concurrent use once built.
type Resolver struct {
	defaults  Bases
	overrides map[string]Bases
}

// NewResolver creates a resolver with system-wide default bases.
func NewResolver(defaultProxy, defaultConcat string) (*Resolver, error) {
	proxy, err := url.Parse(defaultProxy)
	if err != nil {
		return nil, fmt.Errorf("uri: bad default proxy base: %w", err)
	}
	concat, err := url.Parse(defaultConcat)
	if err != nil {
		return nil, fmt.Errorf("uri: bad default concat base: %w", err)
	}
	return &Resolver{
		defaults:  Bases{Proxy: proxy, Concat: concat},
		overrides: make(map[string]Bases),
	}, nil
}

// SetOverride registers container-specific bases. An empty string keeps
// the system default for that base.
func (r *Resolver) SetOverride(container, proxy, concat string) error {
	b := Bases{}
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return fmt.Errorf("uri: bad proxy base for container %q: %w", container, err)
		}
		b.Proxy = u
	}
	if concat != "" {
		u, err := url.Parse(concat)
		if err != nil {
			return fmt.Errorf("uri: bad concat base for container %q: %w", container, err)
		}
		b.Concat = u
	}
	r.overrides[container] = b
	return nil
}

// ProxyBase returns the proxy base for a container.
func (r *Resolver) ProxyBase(container string) *url.URL {
	if b, ok := r.overrides[container]; ok && b.Proxy != nil {
		return b.Proxy
	}
	return r.defaults.Proxy
}

// ConcatBase returns the concat endpoint base for a container.
func (r *Resolver) ConcatBase(container string) *url.URL {
	if b, ok := r.overrides[container]; ok && b.Concat != nil {
		return b.Concat
	}
	return r.defaults.Concat
}

// ProxyURI builds a single-resource proxy link for a container.
func (r *Resolver) ProxyURI(container string, resource *url.URL) *url.URL {
	base := *r.ProxyBase(container)
	q := base.Query()
	q.Set("url", resource.String())
	q.Set(ContainerParam, container)
	base.RawQuery = q.Encode()
	return &base
}

// containersFile is the on-disk shape of the per-container override file.
type containersFile struct {
	Containers map[string]struct {
		ProxyBase  string `yaml:"proxy_base"`
		ConcatBase string `yaml:"concat_base"`
	} `yaml:"containers"`
}

// LoadOverrides reads container overrides from a YAML file.
func (r *Resolver) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("uri: read containers file: %w", err)
	}
	var file containersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("uri: parse containers file: %w", err)
	}
	for name, c := range file.Containers {
		if err := r.SetOverride(name, c.ProxyBase, c.ConcatBase); err != nil {
			return err
		}
	}
	return nil
}
