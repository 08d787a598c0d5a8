package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process ChatStateStore. Last write wins.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]ChatState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]ChatState)}
}

func (m *MemoryStore) Put(_ context.Context, state ChatState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.Key()] = state
	return nil
}

func (m *MemoryStore) Get(_ context.Context, phoneNumberID, contactWAID string) (*ChatState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[phoneNumberID+"/"+contactWAID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) List(_ context.Context, phoneNumberID string) ([]ChatState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ChatState
	for _, s := range m.states {
		if s.PhoneNumberID == phoneNumberID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
