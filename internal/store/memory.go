package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Repository for tests and database-less runs.
type Memory struct {
	mu     sync.RWMutex
	scenes map[string]memoryRow
}

type memoryRow struct {
	scene Scene
	data  []byte
}

func NewMemory() *Memory {
	return &Memory{scenes: make(map[string]memoryRow)}
}

func (m *Memory) Insert(_ context.Context, s Scene, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[s.ID]; ok {
		return fmt.Errorf("scene %s: %w", s.ID, ErrConflict)
	}
	m.scenes[s.ID] = memoryRow{scene: s, data: append([]byte(nil), data...)}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Scene, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.scenes[id]
	if !ok {
		return Scene{}, nil, ErrNotFound
	}
	return row.scene, append([]byte(nil), row.data...), nil
}

func (m *Memory) Update(_ context.Context, s Scene, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[s.ID]; !ok {
		return ErrNotFound
	}
	m.scenes[s.ID] = memoryRow{scene: s, data: append([]byte(nil), data...)}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(m.scenes, id)
	return nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Scene{}
	for _, row := range m.scenes {
		if row.scene.OwnerID == ownerID {
			out = append(out, row.scene)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
