// Package registry implements the capability discovery registry: runtime
// enumeration and parallel probing of pluggable capture/injection
// providers.
package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("registry")

// Capability is the tagged capability vocabulary a provider claims.
type Capability struct {
	Kind string // "inject_keyboard", "inject_pointer", "capture_screen", "display_server", "custom"
	Tag  string // DisplayServer tag or Custom string; empty for the untagged kinds
}

var (
	InjectKeyboard = Capability{Kind: "inject_keyboard"}
	InjectPointer  = Capability{Kind: "inject_pointer"}
	CaptureScreen  = Capability{Kind: "capture_screen"}
)

func DisplayServer(tag string) Capability { return Capability{Kind: "display_server", Tag: tag} }
func Custom(name string) Capability       { return Capability{Kind: "custom", Tag: name} }

// Provider is a registered capability source. A provider that returns
// false from IsAvailable must never be asked to construct a backend.
type Provider interface {
	ID() string
	Name() string
	Capabilities() []Capability

	// IsAvailable must be cheap and idempotent — an environment or
	// command-existence check, never a full connection attempt — and
	// must not mutate external state. It never returns an error: a
	// failed probe is simply "not available".
	IsAvailable(ctx context.Context) bool

	// Construct yields a concrete backend handle. Only called after
	// IsAvailable has reported true.
	Construct(ctx context.Context) (any, error)
}

// Registry maintains an ordered list of providers. Registration order is
// priority order: earlier entries are preferred.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

func New() *Registry {
	return &Registry{}
}

// Register appends p to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
	log.Info("provider registered", "id", p.ID(), "name", p.Name())
}

func (r *Registry) snapshot() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// FindByCapability filters registered providers by a claimed capability,
// preserving registration order.
func (r *Registry) FindByCapability(c Capability) []Provider {
	var out []Provider
	for _, p := range r.snapshot() {
		for _, claimed := range p.Capabilities() {
			if claimed == c {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// FindAvailable runs every provider's IsAvailable in parallel via an
// errgroup bounded to the provider count, and returns those that
// reported true in original registration order. The errgroup result
// slice is pre-sized and written by index, so ordering falls out of the
// indexing rather than needing a separate sort.
func (r *Registry) FindAvailable(ctx context.Context) []Provider {
	providers := r.snapshot()
	available := make([]bool, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(providers))
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			available[i] = p.IsAvailable(gctx)
			return nil
		})
	}
	// Probes never return errors, so Wait can't fail; it only blocks
	// until every probe has reported.
	_ = g.Wait()

	out := make([]Provider, 0, len(providers))
	for i, p := range providers {
		if available[i] {
			out = append(out, p)
		}
	}
	return out
}

// FindBest returns the first available provider by priority.
func (r *Registry) FindBest(ctx context.Context) (Provider, bool) {
	available := r.FindAvailable(ctx)
	if len(available) == 0 {
		return nil, false
	}
	return available[0], true
}

// CreateBestBackend finds the best available provider and constructs it.
func (r *Registry) CreateBestBackend(ctx context.Context) (any, error) {
	p, ok := r.FindBest(ctx)
	if !ok {
		return nil, errNoProviderAvailable
	}
	return p.Construct(ctx)
}

// QueryCapabilities returns the static advertisement across every
// registered provider, regardless of availability.
func (r *Registry) QueryCapabilities() map[string][]Capability {
	out := make(map[string][]Capability)
	for _, p := range r.snapshot() {
		out[p.ID()] = p.Capabilities()
	}
	return out
}
