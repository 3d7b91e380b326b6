package dashboard

import (
	"sort"
	"strings"
	"sync"
)

// Surface is the host document: a set of named containers that chart
// renderers and marker layers bind to. A container can be bound once.
type Surface struct {
	mu         sync.Mutex
	containers map[string]string
}

// NewSurface creates a surface holding the given containers.
func NewSurface(containers ...string) *Surface {
	s := &Surface{containers: map[string]string{}}
	for _, name := range containers {
		s.AddContainer(name)
	}
	return s
}

// AddContainer creates a container. Adding an existing name is a no-op.
func (s *Surface) AddContainer(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.containers[name]; !ok {
		s.containers[name] = ""
	}
}

// Has reports whether the container exists.
func (s *Surface) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.containers[name]
	return ok
}

// Containers lists container names in lexical order.
func (s *Surface) Containers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.containers))
	for name := range s.containers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Surface) bind(name, owner string) error {
	if s == nil {
		return errMissingSurface
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.containers[name]
	if !ok {
		return containerError("container does not exist", name)
	}
	if current != "" {
		return containerError("container already bound to "+current, name)
	}
	s.containers[name] = owner
	return nil
}
