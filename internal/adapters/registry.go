package adapters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

// Keys under which the source catalog providers are registered.
const (
	SourceUser   = "user"
	SourcePublic = "public"
)

// SourceRegistry maps access modes to their SourceCatalogClient
// implementations. It is safe for concurrent use.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]ports.SourceCatalogClient
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{
		sources: make(map[string]ports.SourceCatalogClient),
	}
}

// Register adds a source under the given key, replacing any previous one.
func (r *SourceRegistry) Register(key string, source ports.SourceCatalogClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[key] = source
}

// Get returns the source registered under key. A missing source means the
// credentials for that access mode were never configured.
func (r *SourceRegistry) Get(key string) (ports.SourceCatalogClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[key]
	if !ok {
		return nil, fmt.Errorf("%w: no %q source catalog configured", domain.ErrConfiguration, key)
	}
	return source, nil
}

// Available returns the registered keys in sorted order.
func (r *SourceRegistry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sources))
	for key := range r.sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
