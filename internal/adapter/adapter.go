// Package adapter composes field extractors and normalizers into per-site
// extract(url) → Record operations, and dispatches URLs to the right
// adapter by hostname.
package adapter

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/restolead/catalog-cli/internal/model"
)

// SourceAdapter extracts one normalized Record from one listing URL.
type SourceAdapter interface {
	Name() string
	Supports(rawURL string) bool
	Extract(ctx context.Context, rawURL string) (*model.Record, error)
}

// Registry dispatches URLs to registered adapters in registration order.
type Registry struct {
	adapters []SourceAdapter
}

// NewRegistry creates a Registry with the given adapters.
func NewRegistry(adapters ...SourceAdapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter.
func (r *Registry) Register(a SourceAdapter) {
	r.adapters = append(r.adapters, a)
}

// For returns the first adapter supporting the URL.
func (r *Registry) For(rawURL string) (SourceAdapter, error) {
	for _, a := range r.adapters {
		if a.Supports(rawURL) {
			return a, nil
		}
	}
	return nil, eris.Errorf("adapter: no adapter for url: %s", rawURL)
}

// Extract dispatches and extracts in one call.
func (r *Registry) Extract(ctx context.Context, rawURL string) (*model.Record, error) {
	a, err := r.For(rawURL)
	if err != nil {
		return nil, err
	}
	return a.Extract(ctx, rawURL)
}

// hostMatches reports whether the URL's hostname is or ends with one of
// the given hosts.
func hostMatches(rawURL string, hosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	hostname := u.Hostname()
	for _, h := range hosts {
		if hostname == h || strings.HasSuffix(hostname, "."+h) {
			return true
		}
	}
	return false
}
