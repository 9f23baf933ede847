package store

import "sync"

// Memory is a thread-safe in-memory history store.
type Memory struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemory creates a new empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Add appends a record.
func (m *Memory) Add(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

// History returns records newest first, optionally filtered by session.
func (m *Memory) History(session string, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Record
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if session != "" && rec.Session != session {
			continue
		}
		cp := *rec
		result = append(result, &cp)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
