package dashboard

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ChangeReason tells the subscriber which setter produced a notification.
type ChangeReason string

const (
	ReasonSelect   ChangeReason = "select"
	ReasonViewMode ChangeReason = "view_mode"
)

// SelectionChange is delivered to the store subscriber after every successful setter call.
type SelectionChange struct {
	Previous string
	Current  string
	Mode     ViewMode
	Reason   ChangeReason
}

// EntityChanged reports whether the selected entity differs from the previous one.
func (c SelectionChange) EntityChanged() bool {
	return c.Previous != c.Current
}

// SelectionStore holds the single selected entity and the view mode of one dashboard.
type SelectionStore struct {
	mu         sync.RWMutex
	entities   map[string]Entity
	order      []string
	current    string
	mode       ViewMode
	subscriber func(SelectionChange)
	logger     logrus.FieldLogger
}

// NewSelectionStore builds an empty store.
func NewSelectionStore(logger logrus.FieldLogger) *SelectionStore {
	return &SelectionStore{
		entities: map[string]Entity{},
		logger:   normalizeLogger(logger),
	}
}

// Subscribe installs the single change subscriber, replacing any previous one.
func (s *SelectionStore) Subscribe(fn func(SelectionChange)) {
	s.mu.Lock()
	s.subscriber = fn
	s.mu.Unlock()
}

// Load replaces the entity table. The current selection is kept when its id is
// still present and cleared otherwise. Load does not notify.
func (s *SelectionStore) Load(entities []Entity) (retained bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = make(map[string]Entity, len(entities))
	s.order = make([]string, 0, len(entities))
	for _, e := range entities {
		if _, dup := s.entities[e.ID]; dup {
			continue
		}
		s.entities[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	if s.current == "" {
		return false
	}
	if _, ok := s.entities[s.current]; ok {
		return true
	}
	s.current = ""
	return false
}

// Select makes id the active entity. Unknown ids leave the store unchanged.
func (s *SelectionStore) Select(id string) bool {
	s.mu.Lock()
	if _, ok := s.entities[id]; !ok {
		s.mu.Unlock()
		s.logger.WithField("entity_id", id).Debug("dashboard: ignoring selection of unknown entity")
		return false
	}
	change := SelectionChange{Previous: s.current, Current: id, Mode: s.mode, Reason: ReasonSelect}
	s.current = id
	fn := s.subscriber
	s.mu.Unlock()
	if fn != nil {
		fn(change)
	}
	return true
}

// SetViewMode changes the view mode. It is a no-op while nothing is selected.
func (s *SelectionStore) SetViewMode(mode ViewMode) bool {
	s.mu.Lock()
	if s.current == "" {
		s.mu.Unlock()
		s.logger.WithField("mode", mode.String()).Debug("dashboard: view mode ignored without selection")
		return false
	}
	s.mode = mode
	change := SelectionChange{Previous: s.current, Current: s.current, Mode: mode, Reason: ReasonViewMode}
	fn := s.subscriber
	s.mu.Unlock()
	if fn != nil {
		fn(change)
	}
	return true
}

// ToggleViewMode flips between LongTerm and OneYear.
func (s *SelectionStore) ToggleViewMode() bool {
	return s.SetViewMode(s.ViewMode().Toggled())
}

// Current returns the active entity.
func (s *SelectionStore) Current() (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return Entity{}, false
	}
	e, ok := s.entities[s.current]
	return e, ok
}

// CurrentID returns the active entity id or "".
func (s *SelectionStore) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ViewMode returns the current view mode.
func (s *SelectionStore) ViewMode() ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Entity looks up a loaded entity.
func (s *SelectionStore) Entity(id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// Entities returns the loaded entities in data-set order.
func (s *SelectionStore) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// Len returns the number of loaded entities.
func (s *SelectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
