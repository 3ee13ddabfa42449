package orchestrator

import "sort"

// Store keeps the latest rendering of each output, keyed by output name.
// It is not safe for concurrent use; InMemoryRepository guards it.
type Store interface {
	GetRendering(name string) (*Rendering, bool)
	// SetRendering replaces the rendering stored under r.Name.
	SetRendering(r *Rendering)
	// ListNames returns the stored output names in ascending order.
	ListNames() []string
}

// InMemoryStore is an in-memory implementation of Store.
type InMemoryStore struct {
	renderings map[string]*Rendering
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		renderings: make(map[string]*Rendering),
	}
}

// GetRendering implements Store.GetRendering.
func (s *InMemoryStore) GetRendering(name string) (*Rendering, bool) {
	r, ok := s.renderings[name]
	return r, ok
}

// SetRendering implements Store.SetRendering.
func (s *InMemoryStore) SetRendering(r *Rendering) {
	s.renderings[r.Name] = r
}

// ListNames implements Store.ListNames.
func (s *InMemoryStore) ListNames() []string {
	names := make([]string, 0, len(s.renderings))
	for name := range s.renderings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
