// Package catalog holds the system catalog: descriptors for tables, chunks,
// indexes and triggers, plus the registry that assigns relation identifiers.
package catalog

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrRelationNotFound is returned when a relation id or name cannot be
// resolved.
var ErrRelationNotFound = errors.New("relation not found")

// ErrRelationExists is returned when a relation name is already taken.
var ErrRelationExists = errors.New("relation already exists")

// Catalog is the in-memory registry of relation descriptors.
//
// All methods are safe for concurrent use. Lookup returns the stored
// descriptor pointer; callers must treat it as read-only.
type Catalog struct {
	mu     sync.RWMutex
	nextID RelationID
	byID   map[RelationID]*TableDescriptor
	byName map[string]RelationID
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		nextID: 1,
		byID:   make(map[RelationID]*TableDescriptor),
		byName: make(map[string]RelationID),
	}
}

// CreateTable registers a new relation and returns its descriptor.
func (c *Catalog) CreateTable(name string, kind RelationKind, columns []ColumnDescriptor) (*TableDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return nil, errors.Wrapf(ErrRelationExists, "%q", name)
	}

	desc := &TableDescriptor{
		ID:      c.nextID,
		Name:    name,
		Kind:    kind,
		Columns: append([]ColumnDescriptor(nil), columns...),
	}
	c.nextID++
	c.byID[desc.ID] = desc
	c.byName[desc.Name] = desc.ID

	return desc, nil
}

// CreateHypertable registers a partitioned parent table.
func (c *Catalog) CreateHypertable(name string, columns []ColumnDescriptor) (*TableDescriptor, error) {
	desc, err := c.CreateTable(name, KindTable, columns)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	desc.Hypertable = true
	c.mu.Unlock()
	return desc, nil
}

// CreateChunk registers a chunk of the given hypertable. The chunk inherits
// the parent's columns. This is a DDL/registration primitive driven by the
// caller; the write path never creates chunks on its own.
func (c *Catalog) CreateChunk(parentID RelationID, name string) (*TableDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parent, ok := c.byID[parentID]
	if !ok {
		return nil, errors.Wrapf(ErrRelationNotFound, "parent id %d", parentID)
	}
	if !parent.Hypertable {
		return nil, errors.Newf("relation %q is not a hypertable", parent.Name)
	}
	if _, ok := c.byName[name]; ok {
		return nil, errors.Wrapf(ErrRelationExists, "%q", name)
	}

	desc := &TableDescriptor{
		ID:       c.nextID,
		Name:     name,
		Kind:     KindTable,
		ParentID: parent.ID,
		Columns:  append([]ColumnDescriptor(nil), parent.Columns...),
	}
	c.nextID++
	c.byID[desc.ID] = desc
	c.byName[desc.Name] = desc.ID

	return desc, nil
}

// Lookup resolves a relation id to its descriptor.
func (c *Catalog) Lookup(id RelationID) (*TableDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	desc, ok := c.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrRelationNotFound, "id %d", id)
	}
	return desc, nil
}

// MustLookup is like Lookup but panics on a missing relation. Use only where
// the id is known to exist, e.g. an id taken from a descriptor in hand.
func (c *Catalog) MustLookup(id RelationID) *TableDescriptor {
	desc, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}
	return desc
}

// LookupByName resolves a relation name to its descriptor.
func (c *Catalog) LookupByName(name string) (*TableDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrRelationNotFound, "%q", name)
	}
	return c.byID[id], nil
}

// AttachIndex declares a secondary index on an existing relation.
func (c *Catalog) AttachIndex(id RelationID, idx IndexDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	desc, ok := c.byID[id]
	if !ok {
		return errors.Wrapf(ErrRelationNotFound, "id %d", id)
	}
	for _, col := range idx.Columns {
		if desc.ColumnIndex(col) < 0 {
			return errors.Newf("index %q references unknown column %q of %q", idx.Name, col, desc.Name)
		}
	}
	for _, existing := range desc.Indexes {
		if existing.Name == idx.Name {
			return errors.Newf("index %q already exists on %q", idx.Name, desc.Name)
		}
	}
	desc.Indexes = append(desc.Indexes, idx)
	return nil
}

// AttachTrigger declares a trigger on an existing relation.
func (c *Catalog) AttachTrigger(id RelationID, trig TriggerDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	desc, ok := c.byID[id]
	if !ok {
		return errors.Wrapf(ErrRelationNotFound, "id %d", id)
	}
	desc.Triggers = append(desc.Triggers, trig)
	return nil
}

// SetRowSecurity toggles row-level security on an existing relation.
func (c *Catalog) SetRowSecurity(id RelationID, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	desc, ok := c.byID[id]
	if !ok {
		return errors.Wrapf(ErrRelationNotFound, "id %d", id)
	}
	desc.RowSecurityEnabled = enabled
	return nil
}
