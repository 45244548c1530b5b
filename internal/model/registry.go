package model

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds loaded scoring units keyed by (capability, version).
// It is safe for concurrent use; units are registered at startup and
// resolved on every request.
type Registry struct {
	mu    sync.RWMutex
	units map[string]map[string]ScoringUnit // capability -> version -> unit
}

func NewRegistry() *Registry {
	return &Registry{units: make(map[string]map[string]ScoringUnit)}
}

// Register adds a scoring unit. A unit with the same capability and version
// replaces the previous one.
func (r *Registry) Register(u ScoringUnit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.units[u.Capability()]
	if !ok {
		versions = make(map[string]ScoringUnit)
		r.units[u.Capability()] = versions
	}
	versions[u.Version()] = u
}

// Resolve returns the scoring unit for a capability. An empty version picks
// the latest loaded version (highest version string). Missing capability or
// version resolves to ErrUnavailable.
func (r *Registry) Resolve(capability, version string) (ScoringUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.units[capability]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("capability %q: %w", capability, ErrUnavailable)
	}

	if version == "" {
		version = latestVersion(versions)
	}

	u, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("capability %q version %q: %w", capability, version, ErrUnavailable)
	}
	return u, nil
}

// Missing returns the subset of required capabilities with no loaded unit,
// in the order given. Used by the health endpoint.
func (r *Registry) Missing(required []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := []string{}
	for _, cap := range required {
		if len(r.units[cap]) == 0 {
			missing = append(missing, cap)
		}
	}
	return missing
}

// Capabilities returns all loaded capability names, sorted.
func (r *Registry) Capabilities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]string, 0, len(r.units))
	for cap := range r.units {
		caps = append(caps, cap)
	}
	sort.Strings(caps)
	return caps
}

func latestVersion(versions map[string]ScoringUnit) string {
	latest := ""
	for v := range versions {
		if v > latest {
			latest = v
		}
	}
	return latest
}
