package storage

// AttrType is the type of a relation attribute, shared by the catalog,
// heap-file scan predicates, and the relational operators (spec.md §6).
type AttrType int

const (
	TypeString AttrType = iota
	TypeInteger
	TypeFloat
)

// Operator is a scan predicate's comparison operator (spec.md §4.4
// HeapFileScan.startScan).
type Operator int

const (
	LT Operator = iota
	LTE
	EQ
	GTE
	GT
	NE
)
