package session

import "sync"

// MemoryStore keeps session ids for the lifetime of the process only.
// It backs the non-persisting mode, where every start gets a fresh id.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]string)}
}

// Load returns the session id stored for scope.
func (m *MemoryStore) Load(scope string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[scope]
	return id, ok, nil
}

// Save stores id for scope, replacing any previous id.
func (m *MemoryStore) Save(scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[scope] = id
	return nil
}
