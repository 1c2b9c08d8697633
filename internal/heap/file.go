package heap

import (
	"errors"
	"log/slog"

	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/storage"
)

// ErrFileClosed is returned by File.GetRecord after Close. Other methods
// do not check whether the File is closed.
var ErrFileClosed = errors.New("heap: file is closed")

const noPage int32 = -1

// CreateHeapFile creates a new heap file: a header page plus one empty
// data page, both unpinned dirty (spec.md §4.4 createHeapFile). Fails with
// storage.ErrFileExists if the file is already present.
func CreateHeapFile(store storage.FileStore, bm *bufferpool.Manager, name string) error {
	if h, err := store.OpenFile(name); err == nil {
		_ = store.CloseFile(h)
		return storage.ErrFileExists
	}

	if err := store.CreateFile(name); err != nil {
		return err
	}
	handle, err := store.OpenFile(name)
	if err != nil {
		return err
	}

	hdrPageNo, hdrRaw, err := bm.AllocPage(handle)
	if err != nil {
		_ = store.CloseFile(handle)
		_ = store.DestroyFile(name)
		return err
	}
	dataPageNo, dataRaw, err := bm.AllocPage(handle)
	if err != nil {
		_ = bm.UnpinPage(handle, hdrPageNo, false)
		_ = store.CloseFile(handle)
		_ = store.DestroyFile(name)
		return err
	}

	// The header page is not a slotted page: do not call Page.Init on it,
	// just zero it and write the fixed header fields directly.
	clear(hdrRaw.Buf)
	hv := newHeaderView(hdrRaw)
	hv.setFileName(name)
	hv.setFirstPage(dataPageNo)
	hv.setLastPage(dataPageNo)
	hv.setPageCnt(1)
	hv.setRecCnt(0)

	dataRaw.Init(dataPageNo)

	if err := bm.UnpinPage(handle, dataPageNo, true); err != nil {
		return err
	}
	if err := bm.UnpinPage(handle, hdrPageNo, true); err != nil {
		return err
	}
	return store.CloseFile(handle)
}

// DestroyHeapFile deletes the named heap file via the file store.
func DestroyHeapFile(store storage.FileStore, name string) error {
	return store.DestroyFile(name)
}

// File is an open heap file handle: it keeps the header page and the
// current data page pinned for its entire lifetime (spec.md §4.4 HeapFile
// open/close; Design Notes §9 "mutual references between header and data
// pages").
type File struct {
	Name string

	store storage.FileStore
	bm    *bufferpool.Manager
	h     storage.FileHandle

	headerPageNo int32
	header       *storage.Page
	hdrDirty     bool

	curPageNo int32
	curPage   *storage.Page
	curDirty  bool
	curRec    storage.RID

	closed bool
}

// Open opens an existing heap file, pinning its header page and its first
// data page (spec.md §4.4 HeapFile's constructor: curPageNo starts at
// headerPage.firstPage).
func Open(store storage.FileStore, bm *bufferpool.Manager, name string) (*File, error) {
	return open(store, bm, name, headerPage.firstPage)
}

// open is like Open but pins the data page named by pick(header) instead
// of always starting at firstPage — used by OpenInsertScan, which must
// resume appending at the tail of the chain (spec.md §4.4
// InsertFileScan.insertRecord step 2: "if no page is pinned, pin
// headerPage.lastPage").
func open(store storage.FileStore, bm *bufferpool.Manager, name string, pick func(headerPage) int32) (*File, error) {
	handle, err := store.OpenFile(name)
	if err != nil {
		return nil, err
	}

	headerPageNo := handle.GetFirstPage()
	header, err := bm.ReadPage(handle, headerPageNo)
	if err != nil {
		_ = store.CloseFile(handle)
		return nil, err
	}

	hv := newHeaderView(header)
	curPageNo := pick(hv)
	curPage, err := bm.ReadPage(handle, curPageNo)
	if err != nil {
		_ = bm.UnpinPage(handle, headerPageNo, false)
		_ = store.CloseFile(handle)
		return nil, err
	}

	slog.Debug("heap: opened file", "name", name, "pinnedPage", curPageNo)

	return &File{
		Name:         name,
		store:        store,
		bm:           bm,
		h:            handle,
		headerPageNo: headerPageNo,
		header:       header,
		curPageNo:    curPageNo,
		curPage:      curPage,
		curRec:       storage.NullRID,
	}, nil
}

func (f *File) ensureOpen() error {
	if f == nil || f.closed {
		return ErrFileClosed
	}
	return nil
}

// Close unpins the current data page (if any) and the header page,
// propagating their dirty flags, then closes the underlying file.
func (f *File) Close() error {
	if f == nil || f.closed {
		return nil
	}
	f.closed = true

	var firstErr error
	if f.curPage != nil {
		if err := f.bm.UnpinPage(f.h, f.curPageNo, f.curDirty); err != nil && firstErr == nil {
			firstErr = err
		}
		f.curPage = nil
		f.curPageNo = noPage
	}
	if err := f.bm.UnpinPage(f.h, f.headerPageNo, f.hdrDirty); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := f.store.CloseFile(f.h); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// RecCnt returns the number of live records in the file.
func (f *File) RecCnt() int32 { return newHeaderView(f.header).recCnt() }

// PageCnt returns the number of linked data pages (excluding the header).
func (f *File) PageCnt() int32 { return newHeaderView(f.header).pageCnt() }

// GetRecord retrieves an arbitrary record by RID, switching the pinned
// current page if necessary (spec.md §4.4 getRecord).
func (f *File) GetRecord(rid storage.RID) ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}

	if rid.PageNo == f.curPageNo && f.curPage != nil {
		return f.curPage.GetRecord(rid)
	}

	if f.curPage != nil {
		if err := f.bm.UnpinPage(f.h, f.curPageNo, f.curDirty); err != nil {
			return nil, err
		}
	}

	p, err := f.bm.ReadPage(f.h, rid.PageNo)
	if err != nil {
		f.curPage = nil
		f.curPageNo = noPage
		return nil, err
	}

	f.curPage = p
	f.curPageNo = rid.PageNo
	f.curDirty = false
	f.curRec = rid

	return p.GetRecord(rid)
}
