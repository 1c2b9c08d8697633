// Package relops implements the three relational operators of spec.md
// §4.5 (QU_Insert, QU_Delete, QU_Select) directly atop internal/heap and
// internal/catalog. Unlike the original C++ implementation this package
// takes attribute values as already-encoded bytes (callers own int/float
// text parsing), since Go has no equivalent to passing every value as a
// char* and atoi/atof-ing it inside the operator.
package relops

import (
	"errors"

	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/catalog"
	"github.com/minhdu/minirel/internal/heap"
	"github.com/minhdu/minirel/internal/storage"
)

// ErrAttrCountMismatch is returned by Insert when the number of supplied
// attributes differs from the relation's declared attribute count (spec.md
// §4.5 QU_Insert: "minirel rejects NULLs"). A list of the right length
// that names an unknown attribute fails with storage.ErrAttrNotFound.
var ErrAttrCountMismatch = errors.New("relops: attribute count does not match relation schema")

// AttrInput is one (name, value) pair supplied to Insert. Value must
// already be encoded to AttrDesc.AttrLen bytes (little-endian for
// integer/float attributes).
type AttrInput struct {
	AttrName string
	Value    []byte
}

// Insert builds a record by matching attrs against the relation's schema
// attribute-by-attribute (an O(n²) search, preserved from the original
// QU_Insert rather than rewritten as a map lookup, since the relation
// attribute counts this engine targets are small) and appends it via an
// InsertScan (spec.md §4.5 QU_Insert).
func Insert(cat catalog.Catalog, store storage.FileStore, bm *bufferpool.Manager, relation string, attrs []AttrInput) (storage.RID, error) {
	reclen, schema, err := cat.GetRelInfo(relation)
	if err != nil {
		return storage.RID{}, err
	}
	if len(schema) != len(attrs) {
		return storage.RID{}, ErrAttrCountMismatch
	}

	rec := make([]byte, reclen)
	for _, desc := range schema {
		found := false
		for _, a := range attrs {
			if desc.AttrName != a.AttrName {
				continue
			}
			found = true
			copy(rec[desc.AttrOffset:desc.AttrOffset+desc.AttrLen], a.Value)
			break
		}
		if !found {
			return storage.RID{}, storage.ErrAttrNotFound
		}
	}

	scan, err := heap.OpenInsertScan(store, bm, relation)
	if err != nil {
		return storage.RID{}, err
	}
	defer scan.Close()

	return scan.InsertRecord(rec)
}

// Delete removes every record of relation matching (attrName, op, value).
// An empty attrName means "no predicate, delete everything" — op and typ
// are simply unused in that branch, as in the original QU_Delete (spec.md
// §4.5 QU_Delete).
func Delete(cat catalog.Catalog, store storage.FileStore, bm *bufferpool.Manager, relation, attrName string, op storage.Operator, typ storage.AttrType, value []byte) (int, error) {
	offset, length := 0, 0
	if attrName != "" {
		desc, err := cat.GetInfo(relation, attrName)
		if err != nil {
			return 0, err
		}
		offset, length, typ = desc.AttrOffset, desc.AttrLen, desc.AttrType
	}

	scan, err := heap.OpenScan(store, bm, relation)
	if err != nil {
		return 0, err
	}
	defer scan.EndScan()

	if attrName != "" {
		if err := scan.StartScan(offset, length, typ, value, op); err != nil {
			return 0, err
		}
	}

	deleted := 0
	for {
		if _, err := scan.ScanNext(); err != nil {
			if errors.Is(err, storage.ErrFileEOF) {
				break
			}
			return deleted, err
		}
		if err := scan.DeleteRecord(); err != nil {
			return deleted, err
		}
		scan.MarkDirty()
		deleted++
	}
	return deleted, nil
}

// ProjAttr names one attribute to copy from the scanned relation into the
// result relation's output record.
type ProjAttr struct {
	RelName  string
	AttrName string
}

// Select scans relation (named by the single where-predicate, or by the
// first projection when there is no predicate), applies an optional
// single-attribute filter, and appends a projected copy of every matching
// record into result via an InsertScan (spec.md §4.5 QU_Select /
// ScanSelect). A nil whereAttr means "scan without predicate" — the
// original's null-pointer dereference in that branch (Design Notes §9,
// Open Question 3) is not reproduced.
func Select(cat catalog.Catalog, store storage.FileStore, bm *bufferpool.Manager, result string, projections []ProjAttr, whereAttr *ProjAttr, op storage.Operator, filter []byte) error {
	if len(projections) == 0 {
		return storage.ErrAttrNotFound
	}

	projDescs := make([]catalog.AttrDesc, len(projections))
	for i, p := range projections {
		desc, err := cat.GetInfo(p.RelName, p.AttrName)
		if err != nil {
			return err
		}
		projDescs[i] = desc
	}

	scanRelation := projections[0].RelName
	var whereDesc catalog.AttrDesc
	if whereAttr != nil {
		desc, err := cat.GetInfo(whereAttr.RelName, whereAttr.AttrName)
		if err != nil {
			return err
		}
		whereDesc = desc
		scanRelation = whereAttr.RelName
	}

	reclen := 0
	for _, d := range projDescs {
		reclen += d.AttrLen
	}

	resultScan, err := heap.OpenInsertScan(store, bm, result)
	if err != nil {
		return err
	}
	defer resultScan.Close()

	scan, err := heap.OpenScan(store, bm, scanRelation)
	if err != nil {
		return err
	}
	defer scan.EndScan()

	if whereAttr != nil {
		if err := scan.StartScan(whereDesc.AttrOffset, whereDesc.AttrLen, whereDesc.AttrType, filter, op); err != nil {
			return err
		}
	}

	for {
		if _, err := scan.ScanNext(); err != nil {
			if errors.Is(err, storage.ErrFileEOF) {
				return nil
			}
			return err
		}
		srcRec, err := scan.GetRecord()
		if err != nil {
			return err
		}

		outRec := make([]byte, reclen)
		outOff := 0
		for _, d := range projDescs {
			copy(outRec[outOff:outOff+d.AttrLen], srcRec[d.AttrOffset:d.AttrOffset+d.AttrLen])
			outOff += d.AttrLen
		}

		if _, err := resultScan.InsertRecord(outRec); err != nil {
			return err
		}
	}
}
