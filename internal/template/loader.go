package template

import (
	"context"
	"fmt"
	"os"

	gocache "github.com/patrickmn/go-cache"
	"github.com/vk/cdf2fhir/internal/ctxlog"
)

// Loader reads and parses template documents, memoizing them by absolute
// path for the lifetime of the process.
type Loader struct {
	resolver *Resolver
	cache    *gocache.Cache
}

// NewLoader returns a Loader resolving references with resolver.
func NewLoader(resolver *Resolver) *Loader {
	return &Loader{
		resolver: resolver,
		cache:    gocache.New(gocache.NoExpiration, 0),
	}
}

// Load returns the parsed template ref points at. Repeated loads of the same
// file return the same *Template.
func (l *Loader) Load(ctx context.Context, ref string) (*Template, error) {
	logger := ctxlog.FromContext(ctx)
	path, err := l.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}

	if cached, ok := l.cache.Get(path); ok {
		logger.Debug("Template cache hit.", "path", path)
		return cached.(*Template), nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %q: %w", ref, err)
	}
	t, err := Parse(src, path)
	if err != nil {
		return nil, err
	}

	// Concurrent first loads may both parse; Add keeps the first result.
	if err := l.cache.Add(path, t, gocache.NoExpiration); err != nil {
		if cached, ok := l.cache.Get(path); ok {
			return cached.(*Template), nil
		}
	}
	logger.Debug("Template parsed.", "path", path, "locals", len(t.Locals), "functions", t.Called)
	return t, nil
}

// Forget drops every memoized template.
func (l *Loader) Forget() {
	l.cache.Flush()
}
