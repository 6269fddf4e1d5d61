package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the loaded templates by ID.
type Registry struct {
	prompts map[string]*Template
	mu      sync.RWMutex
}

var globalRegistry *Registry
var once sync.Once

// Get returns the process-wide registry, seeded with the built-in templates.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry returns a registry holding only the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{prompts: make(map[string]*Template)}
	for _, t := range defaults() {
		t := t
		r.prompts[t.ID] = &t
	}
	return r
}

// Register adds or replaces a template
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[t.ID] = t
	return nil
}

// Lookup retrieves a template by ID
func (r *Registry) Lookup(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.prompts[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("prompt not found: %s", id)
}

// SystemPrompt resolves the system prompt for id, falling back to the
// shared assistant system prompt.
func (r *Registry) SystemPrompt(id string) string {
	if t, err := r.Lookup(id); err == nil && t.SystemPrompt != "" {
		return t.SystemPrompt
	}
	if t, err := r.Lookup(SystemID); err == nil {
		return t.SystemPrompt
	}
	return ""
}

// IDs returns the registered template IDs in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.prompts))
	for id := range r.prompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts)
}
