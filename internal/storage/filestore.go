package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/minhdu/minirel/internal/bx"
	"github.com/minhdu/minirel/internal/util"
)

// FileStore is the paged file store consumed interface (spec.md §6):
// create/open/close/destroy a named file; allocate/dispose/read/write a
// page identified by integer page number. This engine treats it as an
// external collaborator, but SPEC_FULL.md calls for a concrete local-disk
// implementation so the rest of the engine is exercisable end-to-end.
type FileStore interface {
	CreateFile(name string) error
	DestroyFile(name string) error
	OpenFile(name string) (FileHandle, error)
	CloseFile(h FileHandle) error
}

// FileHandle is an open paged file.
type FileHandle interface {
	Name() string
	// GetFirstPage returns the logically first page number of the file,
	// used as the header page for heap files.
	GetFirstPage() int32
	AllocatePage() (int32, error)
	DisposePage(pageNo int32) error
	ReadPage(pageNo int32, out []byte) error
	WritePage(pageNo int32, in []byte) error
}

var (
	_ FileStore  = (*LocalFileStore)(nil)
	_ FileHandle = (*localFileHandle)(nil)
)

// LocalFileStore implements FileStore against a local directory, one
// backing ".dat" file per relation plus a small sidecar ".meta" file
// tracking the page count and the free-page list. Grounded on the
// teacher's LocalFileSet/StorageManager (segment-mapped random page I/O,
// ReadAt/WriteAt with short-read zero-fill) generalized to one file per
// relation, plus a free-page list grounded on jordy-godjo-GoBuffer_DB's
// disk manager (which tracks free pages via an on-disk bitmap) — this
// implementation uses a flat persisted free-page stack instead of a
// bitmap since the engine never needs bit-level occupancy queries, only
// "give me a free page" / "this page is free now".
type LocalFileStore struct {
	Dir string
}

func NewLocalFileStore(dir string) *LocalFileStore {
	return &LocalFileStore{Dir: dir}
}

func (s *LocalFileStore) dataPath(name string) string { return filepath.Join(s.Dir, name+".dat") }
func (s *LocalFileStore) metaPath(name string) string { return filepath.Join(s.Dir, name+".meta") }

func (s *LocalFileStore) CreateFile(name string) error {
	if err := os.MkdirAll(s.Dir, DirModeDefault); err != nil {
		return err
	}
	if _, err := os.Stat(s.dataPath(name)); err == nil {
		return ErrFileExists
	}
	f, err := os.OpenFile(s.dataPath(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, FileModeDefault)
	if err != nil {
		return err
	}
	util.CloseQuietly(f)
	return writeMeta(s.metaPath(name), fileMeta{})
}

func (s *LocalFileStore) DestroyFile(name string) error {
	_ = os.Remove(s.metaPath(name))
	return os.Remove(s.dataPath(name))
}

func (s *LocalFileStore) OpenFile(name string) (FileHandle, error) {
	f, err := os.OpenFile(s.dataPath(name), os.O_RDWR, FileModeDefault)
	if err != nil {
		return nil, err
	}
	meta, err := readMeta(s.metaPath(name))
	if err != nil {
		util.CloseQuietly(f)
		return nil, err
	}
	return &localFileHandle{
		name: name,
		f:    f,
		meta: meta,
		path: s.metaPath(name),
	}, nil
}

func (s *LocalFileStore) CloseFile(h FileHandle) error {
	lh, ok := h.(*localFileHandle)
	if !ok {
		return nil
	}
	lh.mu.Lock()
	defer lh.mu.Unlock()
	if err := writeMeta(lh.path, lh.meta); err != nil {
		return err
	}
	return lh.f.Close()
}

// fileMeta is the sidecar bookkeeping state for a LocalFileStore file.
type fileMeta struct {
	PageCount int32
	FreeList  []int32
}

func writeMeta(path string, m fileMeta) error {
	buf := make([]byte, 8+4*len(m.FreeList))
	bx.PutU32(buf[0:4], uint32(m.PageCount))
	bx.PutU32(buf[4:8], uint32(len(m.FreeList)))
	for i, p := range m.FreeList {
		bx.PutU32(buf[8+4*i:12+4*i], uint32(p))
	}
	return os.WriteFile(path, buf, FileModeDefault)
}

func readMeta(path string) (fileMeta, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileMeta{}, nil
		}
		return fileMeta{}, err
	}
	if len(buf) < 8 {
		return fileMeta{}, nil
	}
	m := fileMeta{PageCount: int32(bx.U32(buf[0:4]))}
	n := int(bx.U32(buf[4:8]))
	for i := 0; i < n; i++ {
		m.FreeList = append(m.FreeList, int32(bx.U32(buf[8+4*i:12+4*i])))
	}
	return m, nil
}

type localFileHandle struct {
	name string
	f    *os.File
	path string

	mu   sync.Mutex
	meta fileMeta
}

func (h *localFileHandle) Name() string { return h.name }

// GetFirstPage always returns 0: page 0 is reserved as the file's header
// page by convention, set up once by createHeapFile.
func (h *localFileHandle) GetFirstPage() int32 { return 0 }

func (h *localFileHandle) AllocatePage() (int32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.meta.FreeList); n > 0 {
		pageNo := h.meta.FreeList[n-1]
		h.meta.FreeList = h.meta.FreeList[:n-1]
		return pageNo, nil
	}

	pageNo := h.meta.PageCount
	h.meta.PageCount++

	zero := make([]byte, PageSize)
	if _, err := h.f.WriteAt(zero, int64(pageNo)*PageSize); err != nil {
		return 0, err
	}
	return pageNo, nil
}

func (h *localFileHandle) DisposePage(pageNo int32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.meta.FreeList = append(h.meta.FreeList, pageNo)
	return nil
}

func (h *localFileHandle) ReadPage(pageNo int32, out []byte) error {
	if len(out) != PageSize {
		return ErrBadBuffer
	}
	n, err := h.f.ReadAt(out, int64(pageNo)*PageSize)
	if err != nil && err != io.EOF {
		return err
	}
	for i := n; i < PageSize; i++ {
		out[i] = 0
	}
	return nil
}

func (h *localFileHandle) WritePage(pageNo int32, in []byte) error {
	if len(in) != PageSize {
		return ErrBadBuffer
	}
	n, err := h.f.WriteAt(in, int64(pageNo)*PageSize)
	if err != nil {
		return err
	}
	if n != PageSize {
		return io.ErrShortWrite
	}
	return nil
}
