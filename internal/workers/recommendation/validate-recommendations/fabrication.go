package validaterecommendations

import (
	"strings"
	"sync"
)

// FabricationRegistry is the append-only deny-list of business names that
// models have invented before. Safe for concurrent use.
type FabricationRegistry struct {
	mu    sync.RWMutex
	names []string
	lower []string
}

func NewFabricationRegistry(names ...string) *FabricationRegistry {
	r := &FabricationRegistry{}
	for _, n := range names {
		r.Add(n)
	}
	return r
}

// Add appends name. Blank and duplicate names are ignored.
func (r *FabricationRegistry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	low := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.lower {
		if existing == low {
			return false
		}
	}
	r.names = append(r.names, name)
	r.lower = append(r.lower, low)
	return true
}

func (r *FabricationRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

func (r *FabricationRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Matches returns every deny-listed name contained in text, case-insensitively.
func (r *FabricationRegistry) Matches(text string) []string {
	text = strings.ToLower(text)
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for i, low := range r.lower {
		if strings.Contains(text, low) {
			out = append(out, r.names[i])
		}
	}
	return out
}
