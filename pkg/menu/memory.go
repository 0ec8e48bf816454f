package menu

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Surface. The terminal front end reads its items
// to offer a picker.
type Memory struct {
	mu    sync.Mutex
	items []Item
}

func (m *Memory) RemoveAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *Memory) Create(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ID == item.ID {
			return fmt.Errorf("duplicate menu id %q", item.ID)
		}
	}
	if item.ParentID != "" && !m.has(item.ParentID) {
		return fmt.Errorf("menu %q: unknown parent %q", item.ID, item.ParentID)
	}
	m.items = append(m.items, item)
	return nil
}

func (m *Memory) has(id string) bool {
	for _, it := range m.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Items returns a snapshot of all entries in creation order.
func (m *Memory) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item{}, m.items...)
}

// Children returns the entries under parentID.
func (m *Memory) Children(parentID string) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Item
	for _, it := range m.items {
		if it.ParentID == parentID {
			out = append(out, it)
		}
	}
	return out
}
