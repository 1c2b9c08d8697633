package bufferpool

import (
	"errors"
	"log/slog"
	"sync"

	locking "github.com/minhdu/minirel/internal/lock"
	"github.com/minhdu/minirel/internal/storage"
)

var logPrefix = "bufferpool: "

// ErrBufferExceeded is returned by allocBuf (and anything that calls it)
// when every frame is pinned and no victim can be chosen (spec.md §4.3).
var ErrBufferExceeded = errors.New("bufferpool: buffer exceeded, all frames pinned")

// Manager owns a fixed array of N frames and their backing page bytes, a
// buffer hash table keyed by (file, pageNo), and a replacement policy. It
// is the buffer manager of spec.md §4.3. Victim selection is delegated to
// a Replacer (pkg/clockx's CLOCK implementation, adapted to the spec's
// exact saturation rule) rather than re-implemented inline, per the
// "frame index is just a slot" split in Design Notes §9.
type Manager struct {
	mu sync.Mutex

	frames   []frame
	bufs     [][]byte // parallel array: bufs[i] backs frames[i]
	table    *hashTable
	replacer Replacer
}

// NewManager constructs a buffer pool with a fixed size n > 0.
func NewManager(n int) *Manager {
	if n <= 0 {
		n = 1
	}
	bufs := make([][]byte, n)
	for i := range bufs {
		bufs[i] = make([]byte, storage.PageSize)
	}
	return &Manager{
		frames:   make([]frame, n),
		bufs:     bufs,
		table:    newHashTable(n),
		replacer: newClockAdapter(n),
	}
}

// ReadPage pins and returns the page (file, pageNo), loading it from disk
// on a miss.
func (m *Manager) ReadPage(file storage.FileHandle, pageNo int32) (*storage.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pageKey{file: file, pageNo: pageNo}
	if idx, err := m.table.lookup(key); err == nil {
		f := &m.frames[idx]
		if f.pinCount() == 0 {
			m.replacer.SetEvictable(idx, false)
		}
		f.pin.Inc()
		m.replacer.RecordAccess(idx)
		slog.Debug(logPrefix+"readPage hit", "pageNo", pageNo, "frame", idx, "pin", f.pinCount())
		return &storage.Page{Buf: m.bufs[idx]}, nil
	}

	idx, err := m.allocBuf()
	if err != nil {
		return nil, err
	}

	if err := file.ReadPage(pageNo, m.bufs[idx]); err != nil {
		return nil, err
	}
	if err := m.table.insert(key, idx); err != nil {
		return nil, err
	}
	m.frames[idx] = frame{file: file, pageNo: pageNo, valid: true, pin: locking.NewRefCount(), dirty: false}
	m.replacer.RecordAccess(idx)
	m.replacer.SetEvictable(idx, false)

	slog.Debug(logPrefix+"readPage miss, loaded", "pageNo", pageNo, "frame", idx)
	return &storage.Page{Buf: m.bufs[idx]}, nil
}

// AllocPage asks the file store to allocate a new physical page, pins a
// frame for it, and returns the new page number and its (pinned, dirty=false)
// bytes.
func (m *Manager) AllocPage(file storage.FileHandle) (int32, *storage.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pageNo, err := file.AllocatePage()
	if err != nil {
		return 0, nil, err
	}

	idx, err := m.allocBuf()
	if err != nil {
		return 0, nil, err
	}

	m.frames[idx] = frame{file: file, pageNo: pageNo, valid: true, pin: locking.NewRefCount(), dirty: false}
	if err := m.table.insert(pageKey{file: file, pageNo: pageNo}, idx); err != nil {
		return 0, nil, err
	}
	m.replacer.RecordAccess(idx)
	m.replacer.SetEvictable(idx, false)

	slog.Debug(logPrefix+"allocPage", "pageNo", pageNo, "frame", idx)
	return pageNo, &storage.Page{Buf: m.bufs[idx]}, nil
}

// UnpinPage decrements the pin count for (file, pageNo). A true dirty
// argument is sticky: it never clears an already-dirty frame.
func (m *Manager) UnpinPage(file storage.FileHandle, pageNo int32, dirty bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.table.lookup(pageKey{file: file, pageNo: pageNo})
	if err != nil {
		return ErrHashNotFound
	}
	f := &m.frames[idx]
	if f.pinCount() == 0 {
		return storage.ErrPageNotPinned
	}
	reachedZero := f.pin.Dec()
	if dirty {
		f.dirty = true
	}
	if reachedZero {
		m.replacer.SetEvictable(idx, true)
	}
	slog.Debug(logPrefix+"unpinPage", "pageNo", pageNo, "frame", idx, "pin", f.pinCount(), "dirty", f.dirty)
	return nil
}

// DisposePage removes the page from the buffer pool (if resident) and asks
// the file store to dispose of it. Behavior is undefined (per spec) if the
// page is pinned; this implementation simply proceeds.
func (m *Manager) DisposePage(file storage.FileHandle, pageNo int32) error {
	m.mu.Lock()
	key := pageKey{file: file, pageNo: pageNo}
	if idx, err := m.table.lookup(key); err == nil {
		m.frames[idx].reset()
		m.replacer.Remove(idx)
		_ = m.table.remove(key)
	}
	m.mu.Unlock()

	return file.DisposePage(pageNo)
}

// FlushFile writes back every resident dirty page belonging to file, then
// evicts all of its frames from the pool.
func (m *Manager) FlushFile(file storage.FileHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for idx := range m.frames {
		f := &m.frames[idx]
		if !f.valid || f.file != file {
			continue
		}
		if f.pinCount() > 0 {
			return storage.ErrPagePinned
		}
		if f.dirty {
			if err := file.WritePage(f.pageNo, m.bufs[idx]); err != nil {
				return err
			}
			f.dirty = false
		}
		if err := m.table.remove(f.key()); err != nil {
			slog.Warn(logPrefix+"flushFile: hash/frame inconsistency", "pageNo", f.pageNo)
			return storage.ErrBadBuffer
		}
		m.replacer.Remove(idx)
		f.reset()
	}
	return nil
}

// allocBuf picks a victim frame via the replacer and, if it currently holds
// a valid page, writes it back (if dirty) and removes its hash entry. The
// returned frame index is left zeroed/uninitialized for the caller to set.
//
// Must be called with m.mu held.
func (m *Manager) allocBuf() (int, error) {
	idx, ok := m.replacer.Evict()
	if !ok {
		slog.Debug(logPrefix + "allocBuf: buffer exceeded")
		return -1, ErrBufferExceeded
	}

	f := &m.frames[idx]
	if f.valid {
		if f.dirty {
			if err := f.file.WritePage(f.pageNo, m.bufs[idx]); err != nil {
				return -1, err
			}
		}
		_ = m.table.remove(f.key())
		f.reset()
	}
	return idx, nil
}
