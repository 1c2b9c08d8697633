// Package catalog describes relation schemas: which attributes a relation
// has, and where each one sits within a record's bytes. The relational
// operators (internal/relops) consume it to resolve attribute names to
// byte offsets before touching heap-file records.
package catalog

import (
	"errors"

	"github.com/minhdu/minirel/internal/storage"
)

// ErrRelNotFound is returned when a relation name is not present in the
// catalog.
var ErrRelNotFound = errors.New("catalog: relation not found")

// AttrDesc describes one attribute of one relation: its byte offset and
// length within a record, and its comparison type (spec.md §6 "Catalog
// consumed operations"). Grounded on the teacher's catalog.TableMeta/
// storage.Column pair, generalized to a flat per-attribute record.
type AttrDesc struct {
	RelName    string
	AttrName   string
	AttrOffset int
	AttrLen    int
	AttrType   storage.AttrType
}

// Catalog resolves relation and attribute metadata for the relational
// operators. It is the "Catalog consumed operations" collaborator of
// spec.md §6.
type Catalog interface {
	// GetInfo returns the descriptor for relation.attrName.
	GetInfo(relation, attrName string) (AttrDesc, error)
	// GetRelInfo returns a relation's record length and its attributes in
	// the byte order they are laid out on disk.
	GetRelInfo(relation string) (recLen int, attrs []AttrDesc, error error)
}

var _ Catalog = (*InMemoryCatalog)(nil)

// InMemoryCatalog is a process-local Catalog backed by a plain map, the
// minimal concrete collaborator SPEC_FULL.md calls for so relops is
// exercisable end-to-end without a separate system-catalog relation.
type InMemoryCatalog struct {
	rels map[string][]AttrDesc
}

// NewInMemoryCatalog constructs an empty catalog.
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{rels: make(map[string][]AttrDesc)}
}

// DefineRelation registers (or replaces) a relation's attribute list, in
// on-disk byte order. Attribute offsets/lengths are taken as given by the
// caller; this catalog does not compute them.
func (c *InMemoryCatalog) DefineRelation(relation string, attrs []AttrDesc) {
	c.rels[relation] = attrs
}

func (c *InMemoryCatalog) GetInfo(relation, attrName string) (AttrDesc, error) {
	attrs, ok := c.rels[relation]
	if !ok {
		return AttrDesc{}, ErrRelNotFound
	}
	for _, a := range attrs {
		if a.AttrName == attrName {
			return a, nil
		}
	}
	return AttrDesc{}, storage.ErrAttrNotFound
}

func (c *InMemoryCatalog) GetRelInfo(relation string) (int, []AttrDesc, error) {
	attrs, ok := c.rels[relation]
	if !ok {
		return 0, nil, ErrRelNotFound
	}
	recLen := 0
	for _, a := range attrs {
		if end := a.AttrOffset + a.AttrLen; end > recLen {
			recLen = end
		}
	}
	return recLen, attrs, nil
}
