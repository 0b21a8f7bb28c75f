package lockmgr

import "sync"

// Registry maps a resolved vault path to the Manager shared by every open
// handle to that vault, so two mounts of the same vault path contend on the
// same locks instead of racing past each other. The registry entry's
// lifetime follows the last handle: the release func returned by Acquire
// drops it once the refcount reaches zero.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	manager  *Manager
	refCount int
}

// NewRegistry creates an empty process-wide registry. cmd/cryptovaultfs
// does not use one; its mount and fsck commands each call lockmgr.New.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Acquire returns the shared Manager for vaultPath, creating it on first
// use, and increments its refcount. Callers must call the returned release
// func exactly once when done (typically at unmount).
func (r *Registry) Acquire(vaultPath string) (*Manager, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[vaultPath]
	if !ok {
		e = &registryEntry{manager: New()}
		r.entries[vaultPath] = e
	}
	e.refCount++

	return e.manager, func() { r.release(vaultPath) }
}

func (r *Registry) release(vaultPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[vaultPath]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(r.entries, vaultPath)
	}
}
