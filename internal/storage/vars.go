package storage

import "errors"

const (
	OneKB = 1024
	OneMB = OneKB * 1024

	// PageSize is the fixed size in bytes of every page, on disk and in the
	// buffer pool. The spec calls for a single fixed page size; there is no
	// per-file or per-table override.
	PageSize = OneKB * 8

	// HeaderSize is the size in bytes of the fixed page header (SPEC_FULL.md
	// §3): flags(2) + pageNo(4) + nextPage(4) + numSlots(2) + lower(2) +
	// upper(2) + reserved(8).
	HeaderSize = 24

	// SlotSize is the size in bytes of one slot-directory entry: offset(2) +
	// length(2) + flags(2).
	SlotSize = 6

	slotFlagUsed    = 0
	slotFlagDeleted = 1

	// FileModeDefault is the mode used when creating new relation files.
	FileModeDefault = 0o644
	// DirModeDefault is the mode used when creating the data directory.
	DirModeDefault = 0o755
)

// NoNextPage is the sentinel value stored in a page's next-page pointer
// when the page is the last one in its heap file's linked list.
const NoNextPage int32 = -1

// Status sentinels. Names mirror spec.md §7's status enumeration; OK is
// represented by a nil error, which is idiomatic Go.
var (
	ErrNoSpace       = errors.New("storage: no space left on page")
	ErrEndOfPage     = errors.New("storage: no next record on page")
	ErrNoRecords     = errors.New("storage: page has no records")
	ErrInvalidSlotNo = errors.New("storage: invalid slot number")
	ErrInvalidRecLen = errors.New("storage: record too large for an empty page")
	ErrFileEOF       = errors.New("storage: read past end of file")
	ErrFileExists    = errors.New("storage: file already exists")
	ErrBadScanParm   = errors.New("storage: invalid scan predicate parameters")
	ErrAttrNotFound  = errors.New("storage: attribute not found")
	ErrPageNotPinned = errors.New("storage: page is not pinned")
	ErrPagePinned    = errors.New("storage: page is still pinned")
	ErrBadBuffer     = errors.New("storage: malformed page buffer")
)
