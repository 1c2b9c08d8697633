package heap

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/storage"
)

// predicate is a HeapFileScan's optional single-attribute filter
// (spec.md §4.4 startScan / matchRec).
type predicate struct {
	active bool
	offset int
	length int
	typ    storage.AttrType
	op     storage.Operator
	filter []byte
}

// Scan is the HeapFileScan of spec.md §4.4: an open File plus scan-local
// state (an optional predicate, a mark/reset snapshot). It embeds File so
// RecCnt/PageCnt/Close are inherited directly; Scan's own GetRecord (no
// RID argument) shadows File.GetRecord(rid).
type Scan struct {
	*File

	pred predicate

	markedPageNo int32
	markedRec    storage.RID
}

// OpenScan opens name for scanning, mirroring HeapFileScan's constructor
// (which simply opens the underlying heap file with no filter active).
func OpenScan(store storage.FileStore, bm *bufferpool.Manager, name string) (*Scan, error) {
	f, err := Open(store, bm, name)
	if err != nil {
		return nil, err
	}
	return &Scan{File: f}, nil
}

// StartScan installs (or clears, if filter is nil) a single-attribute
// predicate for subsequent ScanNext calls (spec.md §4.4 startScan).
func (s *Scan) StartScan(offset, length int, typ storage.AttrType, filter []byte, op storage.Operator) error {
	if filter == nil {
		s.pred = predicate{}
		return nil
	}

	validLen := true
	switch typ {
	case storage.TypeInteger:
		validLen = length == 4
	case storage.TypeFloat:
		validLen = length == 4
	case storage.TypeString:
		// any positive length is acceptable
	default:
		return storage.ErrBadScanParm
	}

	switch {
	case offset < 0 || length < 1:
		return storage.ErrBadScanParm
	case !validLen:
		return storage.ErrBadScanParm
	case op != storage.LT && op != storage.LTE && op != storage.EQ &&
		op != storage.GTE && op != storage.GT && op != storage.NE:
		return storage.ErrBadScanParm
	}

	s.pred = predicate{active: true, offset: offset, length: length, typ: typ, op: op, filter: filter}
	return nil
}

// EndScan releases the scan by closing its File: it unpins the currently
// pinned data page (if any) and the header page, then closes the
// underlying file. Safe to call multiple times.
func (s *Scan) EndScan() error {
	return s.Close()
}

// MarkScan snapshots the scan's current position for a later ResetScan.
func (s *Scan) MarkScan() {
	s.markedPageNo = s.curPageNo
	s.markedRec = s.curRec
}

// ResetScan restores the position captured by the last MarkScan, re-pinning
// the marked page if the scan has since moved off of it.
func (s *Scan) ResetScan() error {
	if s.markedPageNo != s.curPageNo {
		if s.curPage != nil {
			if err := s.bm.UnpinPage(s.h, s.curPageNo, s.curDirty); err != nil {
				return err
			}
		}
		p, err := s.bm.ReadPage(s.h, s.markedPageNo)
		if err != nil {
			s.curPage = nil
			s.curPageNo = noPage
			return err
		}
		s.curPage = p
		s.curPageNo = s.markedPageNo
		s.curDirty = false
	}
	s.curRec = s.markedRec
	return nil
}

// ScanNext advances the scan to the next record matching the predicate (or
// the next record at all, if no predicate is active), leaving the page that
// holds it pinned as the scan's current page. Returns storage.ErrFileEOF
// once the last page has been exhausted.
//
// This is the single, well-defined scanNext state machine named by
// spec.md §4.4 — not the alternate variant Design Notes §9 calls out as
// having undefined behavior on an unmatched last record.
func (s *Scan) ScanNext() (storage.RID, error) {
	for {
		var (
			next storage.RID
			err  error
		)
		if s.curRec.IsNull() {
			next, err = s.curPage.FirstRecord()
		} else {
			next, err = s.curPage.NextRecord(s.curRec)
		}

		if err == nil {
			rec, gerr := s.curPage.GetRecord(next)
			if gerr != nil {
				return storage.RID{}, gerr
			}
			s.curRec = next
			if s.matchRec(rec) {
				return next, nil
			}
			continue
		}

		nextPageNo := s.curPage.NextPage()
		if err := s.bm.UnpinPage(s.h, s.curPageNo, s.curDirty); err != nil {
			return storage.RID{}, err
		}
		s.curPage = nil
		s.curPageNo = noPage
		s.curDirty = false

		if nextPageNo == storage.NoNextPage {
			return storage.RID{}, storage.ErrFileEOF
		}

		p, rerr := s.bm.ReadPage(s.h, nextPageNo)
		if rerr != nil {
			return storage.RID{}, rerr
		}
		s.curPage = p
		s.curPageNo = nextPageNo
		s.curDirty = false
		s.curRec = storage.NullRID
	}
}

// GetRecord returns the record at the scan's current position.
func (s *Scan) GetRecord() ([]byte, error) {
	return s.curPage.GetRecord(s.curRec)
}

// DeleteRecord deletes the record at the scan's current position and
// decrements the file's record count.
func (s *Scan) DeleteRecord() error {
	if err := s.curPage.DeleteRecord(s.curRec); err != nil {
		return err
	}
	s.curDirty = true
	hv := newHeaderView(s.header)
	hv.setRecCnt(hv.recCnt() - 1)
	s.hdrDirty = true
	return nil
}

// MarkDirty marks the scan's current page dirty without modifying it
// (used by callers that mutate a record's bytes in place).
func (s *Scan) MarkDirty() {
	s.curDirty = true
}

// matchRec evaluates the scan's predicate (if any) against rec by
// comparing length-delimited raw bytes — never by casting through a
// possibly-misaligned pointer (Design Notes §9).
func (s *Scan) matchRec(rec []byte) bool {
	p := s.pred
	if !p.active {
		return true
	}
	if p.offset+p.length > len(rec) {
		return false
	}
	attr := rec[p.offset : p.offset+p.length]

	var diff float64
	switch p.typ {
	case storage.TypeInteger:
		a := int32(binary.LittleEndian.Uint32(attr))
		f := int32(binary.LittleEndian.Uint32(p.filter))
		diff = float64(a) - float64(f)
	case storage.TypeFloat:
		a := math.Float32frombits(binary.LittleEndian.Uint32(attr))
		f := math.Float32frombits(binary.LittleEndian.Uint32(p.filter))
		diff = float64(a) - float64(f)
	case storage.TypeString:
		diff = float64(bytes.Compare(attr, p.filter))
	}

	switch p.op {
	case storage.LT:
		return diff < 0
	case storage.LTE:
		return diff <= 0
	case storage.EQ:
		return diff == 0
	case storage.GTE:
		return diff >= 0
	case storage.GT:
		return diff > 0
	case storage.NE:
		return diff != 0
	}
	return false
}
