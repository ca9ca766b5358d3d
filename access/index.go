package access

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/btree"

	"github.com/hupe1980/hypergo/catalog"
	"github.com/hupe1980/hypergo/core"
)

type indexItem struct {
	key      string
	postings *roaring.Bitmap
}

func (it indexItem) Less(than btree.Item) bool {
	return it.key < than.(indexItem).key
}

// IndexStore is the backing storage for one secondary index: a btree of
// encoded keys, each holding a posting set of RowIDs.
type IndexStore struct {
	mu     sync.Mutex
	name   string
	unique bool
	tree   *btree.BTree
}

// NewIndexStore creates empty storage for the described index.
func NewIndexStore(desc catalog.IndexDescriptor) *IndexStore {
	return &IndexStore{
		name:   desc.Name,
		unique: desc.Unique,
		tree:   btree.New(32),
	}
}

func (s *IndexStore) insert(key string, id core.RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var postings *roaring.Bitmap
	if it := s.tree.Get(indexItem{key: key}); it != nil {
		postings = it.(indexItem).postings
	}
	if postings == nil {
		postings = roaring.New()
		s.tree.ReplaceOrInsert(indexItem{key: key, postings: postings})
	} else if s.unique && !postings.IsEmpty() {
		return &ErrUniqueViolation{Index: s.name, Key: key}
	}
	postings.Add(uint32(id))
	return nil
}

func (s *IndexStore) lookup(key string) *roaring.Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it := s.tree.Get(indexItem{key: key}); it != nil {
		return it.(indexItem).postings.Clone()
	}
	return roaring.New()
}

// Len returns the number of distinct keys.
func (s *IndexStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree.Len()
}

// IndexRelation is an open handle to one secondary index of an open relation.
// It resolves the indexed columns once at open time.
type IndexRelation struct {
	desc    catalog.IndexDescriptor
	store   *IndexStore
	columns []int
	open    bool
}

// OpenIndex opens the described index of the given relation.
func OpenIndex(store *Store, rel *Relation, desc catalog.IndexDescriptor) (*IndexRelation, error) {
	cols := make([]int, len(desc.Columns))
	for i, name := range desc.Columns {
		pos := rel.Descriptor().ColumnIndex(name)
		if pos < 0 {
			return nil, errors.AssertionFailedf(
				"index %q references unknown column %q of relation %q",
				desc.Name, name, rel.Descriptor().Name)
		}
		cols[i] = pos
	}
	return &IndexRelation{
		desc:    desc,
		store:   store.indexStore(rel.ID(), desc),
		columns: cols,
		open:    true,
	}, nil
}

// Descriptor returns the index descriptor.
func (ir *IndexRelation) Descriptor() catalog.IndexDescriptor {
	return ir.desc
}

// IsOpen reports whether the handle is still open.
func (ir *IndexRelation) IsOpen() bool {
	return ir.open
}

// Close invalidates the handle. Closing a closed handle is a no-op.
func (ir *IndexRelation) Close() {
	ir.open = false
}

// InsertEntry adds an index entry for the given row.
func (ir *IndexRelation) InsertEntry(row core.Row, id core.RowID) error {
	if !ir.open {
		return errors.AssertionFailedf("insert into closed index handle %q", ir.desc.Name)
	}
	key, err := ir.encodeKey(row)
	if err != nil {
		return err
	}
	return ir.store.insert(key, id)
}

// Lookup returns the posting set for the given key values.
func (ir *IndexRelation) Lookup(values ...core.Datum) (*roaring.Bitmap, error) {
	if !ir.open {
		return nil, errors.AssertionFailedf("lookup on closed index handle %q", ir.desc.Name)
	}
	if len(values) != len(ir.columns) {
		return nil, errors.AssertionFailedf(
			"index %q expects %d key values, got %d", ir.desc.Name, len(ir.columns), len(values))
	}
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(0x00)
		}
		if err := encodeDatum(&sb, v); err != nil {
			return nil, err
		}
	}
	return ir.store.lookup(sb.String()), nil
}

func (ir *IndexRelation) encodeKey(row core.Row) (string, error) {
	var sb strings.Builder
	for i, pos := range ir.columns {
		if i > 0 {
			sb.WriteByte(0x00)
		}
		if pos >= len(row) {
			return "", errors.AssertionFailedf(
				"row too short for index %q: need column %d, have %d", ir.desc.Name, pos, len(row))
		}
		if err := encodeDatum(&sb, row[pos]); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// encodeDatum appends a type-tagged, order-insensitive encoding of a datum.
// Equality of encodings implies equality of datums, which is all posting-set
// lookups need.
func encodeDatum(sb *strings.Builder, d core.Datum) error {
	switch v := d.(type) {
	case nil:
		sb.WriteString("n:")
	case int64:
		fmt.Fprintf(sb, "i:%d", v)
	case int:
		fmt.Fprintf(sb, "i:%d", v)
	case float64:
		fmt.Fprintf(sb, "f:%g", v)
	case string:
		sb.WriteString("s:")
		sb.WriteString(v)
	case bool:
		fmt.Fprintf(sb, "b:%t", v)
	case time.Time:
		fmt.Fprintf(sb, "t:%d", v.UnixNano())
	default:
		return errors.AssertionFailedf("unsupported datum type %T", d)
	}
	return nil
}
