package access

import (
	"sync"

	"github.com/hupe1980/hypergo/catalog"
)

// Store owns the physical storage (heaps and index stores) for every
// relation, keyed by relation id. Storage is created lazily on first access.
type Store struct {
	mu      sync.Mutex
	heaps   map[catalog.RelationID]*Heap
	indexes map[catalog.RelationID]map[string]*IndexStore
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		heaps:   make(map[catalog.RelationID]*Heap),
		indexes: make(map[catalog.RelationID]map[string]*IndexStore),
	}
}

func (s *Store) heap(id catalog.RelationID) *Heap {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.heaps[id]
	if !ok {
		h = NewHeap()
		s.heaps[id] = h
	}
	return h
}

func (s *Store) indexStore(id catalog.RelationID, desc catalog.IndexDescriptor) *IndexStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.indexes[id]
	if !ok {
		byName = make(map[string]*IndexStore)
		s.indexes[id] = byName
	}
	is, ok := byName[desc.Name]
	if !ok {
		is = NewIndexStore(desc)
		byName[desc.Name] = is
	}
	return is
}

// Heap exposes the heap of a relation for inspection.
func (s *Store) Heap(id catalog.RelationID) *Heap {
	return s.heap(id)
}
