package bufferpool

import (
	locking "github.com/minhdu/minirel/internal/lock"
	"github.com/minhdu/minirel/internal/storage"
)

// frame is a buffer-pool frame descriptor (spec.md §3 "Buffer frame
// descriptor"). Page bytes live in a separate parallel array (Manager.bufs)
// so they stay contiguous for I/O, per Design Notes §9. The pin count uses
// the teacher's locking.RefCount rather than a bare int, since "pinned
// while count > 0, evictable once it reaches zero" is exactly what
// RefCount already implements.
type frame struct {
	file   storage.FileHandle
	pageNo int32
	valid  bool
	pin    *locking.RefCount
	dirty  bool
}

// pinCount reports the frame's current pin count, or 0 for a frame that
// has never been pinned.
func (f *frame) pinCount() int32 {
	if f.pin == nil {
		return 0
	}
	return f.pin.Get()
}

func (f *frame) reset() {
	*f = frame{}
}

func (f *frame) key() pageKey {
	return pageKey{file: f.file, pageNo: f.pageNo}
}
