package heap

import (
	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/storage"
)

// InsertScan is the InsertFileScan of spec.md §4.4: an open File used only
// to append records, always inserting onto the file's last page and
// extending the file with a freshly linked page on NOSPACE.
type InsertScan struct {
	*File
}

// OpenInsertScan opens name for appending, pinning headerPage.lastPage as
// the current page rather than firstPage (spec.md §4.4
// InsertFileScan.insertRecord step 2) — otherwise every reopened
// InsertScan on a relation that has already split once would retarget
// insertRecord's NOSPACE path at firstPage, overwriting its real
// next-page link and orphaning the rest of the chain.
func OpenInsertScan(store storage.FileStore, bm *bufferpool.Manager, name string) (*InsertScan, error) {
	f, err := open(store, bm, name, headerPage.lastPage)
	if err != nil {
		return nil, err
	}
	return &InsertScan{File: f}, nil
}

// InsertRecord appends rec to the file, returning the RID it was given.
// Oversized records are rejected up front with storage.ErrInvalidRecLen;
// a full current page is transparently extended with a new linked page
// (spec.md §4.4 InsertFileScan.insertRecord).
func (s *InsertScan) InsertRecord(rec []byte) (storage.RID, error) {
	if len(rec) > storage.AvailableSpace() {
		return storage.RID{}, storage.ErrInvalidRecLen
	}

	rid, err := s.curPage.InsertRecord(rec)
	if err == nil {
		s.curDirty = true
		s.curRec = rid
		hv := newHeaderView(s.header)
		hv.setRecCnt(hv.recCnt() + 1)
		s.hdrDirty = true
		return rid, nil
	}
	if err != storage.ErrNoSpace {
		return storage.RID{}, err
	}

	newPageNo, newPage, err := s.bm.AllocPage(s.h)
	if err != nil {
		return storage.RID{}, err
	}
	newPage.Init(newPageNo)
	s.curPage.SetNextPage(newPageNo)
	oldPageNo, oldDirty := s.curPageNo, true
	if err := s.bm.UnpinPage(s.h, oldPageNo, oldDirty); err != nil {
		return storage.RID{}, err
	}

	s.curPage = newPage
	s.curPageNo = newPageNo
	s.curDirty = false

	rid, err = s.curPage.InsertRecord(rec)
	if err != nil {
		return storage.RID{}, err
	}
	s.curDirty = true
	s.curRec = rid

	hv := newHeaderView(s.header)
	hv.setLastPage(newPageNo)
	hv.setPageCnt(hv.pageCnt() + 1)
	hv.setRecCnt(hv.recCnt() + 1)
	s.hdrDirty = true

	return rid, nil
}
