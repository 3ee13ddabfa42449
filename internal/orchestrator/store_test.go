package orchestrator

import (
	"testing"
)

func TestInMemoryStore_GetSetRendering(t *testing.T) {
	store := NewInMemoryStore()

	_, ok := store.GetRendering("event")
	if ok {
		t.Error("expected not found for empty store")
	}

	r := &Rendering{Name: "event", Period: "p1"}
	store.SetRendering(r)

	got, ok := store.GetRendering("event")
	if !ok || got != r {
		t.Errorf("GetRendering: ok=%v, got %p want %p", ok, got, r)
	}
}

func TestInMemoryStore_SetRendering_replaces(t *testing.T) {
	store := NewInMemoryStore()
	r1 := &Rendering{Name: "event", Period: "p1"}
	r2 := &Rendering{Name: "event", Period: "p2"}
	store.SetRendering(r1)
	store.SetRendering(r2)

	got, ok := store.GetRendering("event")
	if !ok || got != r2 {
		t.Errorf("SetRendering should replace: got %p want %p", got, r2)
	}
	if names := store.ListNames(); len(names) != 1 {
		t.Errorf("expected one name, got %v", names)
	}
}

func TestNewInMemoryRepositoryWithStore(t *testing.T) {
	// Verify repository works with an explicitly injected store (persistence abstraction).
	store := NewInMemoryStore()
	repo := NewInMemoryRepositoryWithStore(store)

	if err := repo.Publish(Rendering{Name: "event", Period: "p1", Markup: []byte("<smil/>")}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	st, ok := store.GetRendering("event")
	if !ok || st.Period != "p1" {
		t.Error("injected store should contain rendering after Publish")
	}
}

func TestInMemoryStore_ListNames_sorted(t *testing.T) {
	store := NewInMemoryStore()
	for _, name := range []string{"late", "early", "mid"} {
		store.SetRendering(&Rendering{Name: name})
	}

	names := store.ListNames()
	if len(names) != 3 || names[0] != "early" || names[1] != "late" || names[2] != "mid" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
