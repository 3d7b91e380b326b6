package dashboard

import (
	"fmt"
	"strings"
	"sync"
)

// ListRow is one entity row of the side list.
type ListRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
	Active bool   `json:"active"`
}

// ListPanel renders one row per entity and forwards row clicks to the selection store.
type ListPanel struct {
	mu        sync.RWMutex
	container string
	store     *SelectionStore
	rows      []ListRow
	index     map[string]int
	active    string
}

// NewListPanel binds a list panel to container.
func NewListPanel(surface *Surface, container string, store *SelectionStore) (*ListPanel, error) {
	container = strings.TrimSpace(container)
	if store == nil {
		return nil, fmt.Errorf("dashboard: list panel %s needs a selection store", container)
	}
	if err := surface.bind(container, "list"); err != nil {
		return nil, err
	}
	return &ListPanel{container: container, store: store, index: map[string]int{}}, nil
}

// Sync rebuilds the rows from entities.
func (p *ListPanel) Sync(entities []Entity) {
	rows := make([]ListRow, len(entities))
	index := make(map[string]int, len(entities))
	for i, e := range entities {
		rows[i] = ListRow{ID: e.ID, Name: e.Name, Note: e.Note}
		index[e.ID] = i
	}
	p.mu.Lock()
	p.rows, p.index, p.active = rows, index, ""
	p.mu.Unlock()
}

// Click selects the row's entity. Unknown rows return false.
func (p *ListPanel) Click(id string) bool {
	p.mu.RLock()
	_, ok := p.index[id]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	return p.store.Select(id)
}

// SetActive moves the active mark to id.
func (p *ListPanel) SetActive(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx, ok := p.index[p.active]; ok {
		p.rows[idx].Active = false
	}
	p.active = ""
	if idx, ok := p.index[id]; ok {
		p.rows[idx].Active = true
		p.active = id
	}
}

// Active returns the active row id.
func (p *ListPanel) Active() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Rows returns a copy of the rows.
func (p *ListPanel) Rows() []ListRow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]ListRow(nil), p.rows...)
}

// Container returns the bound container name.
func (p *ListPanel) Container() string { return p.container }
