package orchestrator

import (
	"errors"
	"sync"
)

// Repository defines the concurrency-safe contract for publishing and reading
// renderings. The assembler loop is the only writer; the status server reads.
type Repository interface {
	// Publish replaces the rendering stored under r.Name.
	// A rendering without a name or markup is rejected.
	Publish(r Rendering) error

	// Latest returns a copy of the rendering published under name.
	// The ok return is false if nothing has been published yet.
	Latest(name string) (r Rendering, ok bool)

	// Names returns the published output names in sorted order.
	Names() []string
}

var (
	// ErrMissingName is returned when publishing a rendering without a name.
	ErrMissingName = errors.New("rendering has no name")

	// ErrMissingMarkup is returned when publishing a rendering without markup.
	ErrMissingMarkup = errors.New("rendering has no markup")
)

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
// Useful for testing or for plugging in a different persistence backend.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// Publish implements Repository.Publish.
func (r *InMemoryRepository) Publish(rendering Rendering) error {
	if rendering.Name == "" {
		return ErrMissingName
	}
	if len(rendering.Markup) == 0 {
		return ErrMissingMarkup
	}

	// Own the markup so callers cannot mutate published state.
	rendering.Markup = append([]byte(nil), rendering.Markup...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.SetRendering(&rendering)
	return nil
}

// Latest implements Repository.Latest.
func (r *InMemoryRepository) Latest(name string) (Rendering, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.store.GetRendering(name)
	if !ok {
		return Rendering{}, false
	}
	out := *stored
	out.Markup = append([]byte(nil), stored.Markup...)
	return out, true
}

// Names implements Repository.Names.
func (r *InMemoryRepository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.store.ListNames()
}
