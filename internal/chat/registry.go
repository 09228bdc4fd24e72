package chat

import (
	"sync"

	"github.com/samber/lo"
)

// Registry is the shared directory of connected, named sessions. A single
// mutex serializes every mutation and read, so no caller can observe a
// partially inserted or removed entry. The registry holds back references
// only; each session's lifetime is owned by its worker.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register atomically checks absence and inserts. Name comparison is exact
// and case-sensitive. On ErrNameTaken nothing changes: either the name
// becomes visible to all subsequent readers or the registry is untouched.
func (r *Registry) Register(name string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[name]; exists {
		return ErrNameTaken
	}
	r.sessions[name] = s
	ConnectedClients.Set(float64(len(r.sessions)))
	return nil
}

// Unregister removes the entry if present. Idempotent, so every cleanup
// path may call it without checking who got there first.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, name)
	ConnectedClients.Set(float64(len(r.sessions)))
}

// SnapshotNames returns a point-in-time list of active names. Order is
// unspecified; display layers sort explicitly (see SortNames).
func (r *Registry) SnapshotNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.sessions)
}

// Lookup resolves a name to its session, or nil when absent. The target
// may go stale between lookup and use; callers treat a failed write to a
// stale session as advisory.
func (r *Registry) Lookup(name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[name]
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
