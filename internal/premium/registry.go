// Package premium tracks the user handles whose games get rewritten replies.
package premium

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type listFile struct {
	Usernames []string `yaml:"usernames"`
}

// Registry is a set of premium handles. The zero value is empty and ready to use.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]struct{}
}

// New creates a registry holding handles.
func New(handles ...string) *Registry {
	r := &Registry{}
	r.set(handles)
	return r
}

// Load reads a YAML file of the form "usernames: [a, b]". An empty path
// yields an empty registry.
func Load(path string) (*Registry, error) {
	r := &Registry{}
	if path == "" {
		return r, nil
	}
	if err := r.Reload(path); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the registry contents with the handles in path.
func (r *Registry) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read premium list: %w", err)
	}
	var file listFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse premium list %s: %w", path, err)
	}
	r.set(file.Usernames)
	return nil
}

func (r *Registry) set(handles []string) {
	m := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		h = strings.TrimPrefix(strings.TrimSpace(h), "@")
		if h != "" {
			m[h] = struct{}{}
		}
	}
	r.mu.Lock()
	r.handles = m
	r.mu.Unlock()
}

// IsPremium reports whether handle is listed. Users without a handle are
// never premium.
func (r *Registry) IsPremium(handle string) bool {
	if handle == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[handle]
	return ok
}

// Len returns the number of listed handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
