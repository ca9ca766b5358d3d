package access

import (
	"sync"

	"github.com/google/btree"

	"github.com/hupe1980/hypergo/core"
)

type heapItem struct {
	id  core.RowID
	row core.Row
}

func (it heapItem) Less(than btree.Item) bool {
	return it.id < than.(heapItem).id
}

// Heap is the row storage for a single relation: a btree ordered by RowID.
// RowIDs are dense and assigned on insert.
type Heap struct {
	mu     sync.RWMutex
	tree   *btree.BTree
	nextID core.RowID
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{
		tree:   btree.New(32),
		nextID: 1,
	}
}

// Insert stores the row and returns its assigned RowID.
func (h *Heap) Insert(row core.Row) core.RowID {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.tree.ReplaceOrInsert(heapItem{id: id, row: row.Clone()})
	return id
}

// Get retrieves a row by id.
func (h *Heap) Get(id core.RowID) (core.Row, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	it := h.tree.Get(heapItem{id: id})
	if it == nil {
		return nil, false
	}
	return it.(heapItem).row, true
}

// Len returns the number of stored rows.
func (h *Heap) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.tree.Len()
}

// Scan visits all rows in RowID order until fn returns false.
func (h *Heap) Scan(fn func(id core.RowID, row core.Row) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.tree.Ascend(func(it btree.Item) bool {
		hi := it.(heapItem)
		return fn(hi.id, hi.row)
	})
}
