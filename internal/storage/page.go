package storage

// RID identifies a record by the page it lives on and its slot within that
// page's slot directory (spec.md §3 "Record identifier").
type RID struct {
	PageNo int32
	SlotNo int32
}

// NullRID is the "no record" RID sentinel. A heap file's current RID holds
// it while no record on the current data page has been visited yet.
var NullRID = RID{PageNo: -1, SlotNo: -1}

// IsNull reports whether r is the NullRID sentinel.
func (r RID) IsNull() bool { return r == NullRID }

const (
	_256   = 256
	_256_2 = 256 * 256
	_256_3 = 256 * 256 * 256
)

func getU16(b []byte, offset int) uint16 {
	return uint16(b[offset]) + uint16(b[offset+1])*_256
}

func putU16(b []byte, offset int, v uint16) {
	b[offset], b[offset+1] = byte(v%_256), byte(v/_256)
}

func getU32(b []byte, offset int) uint32 {
	return uint32(b[offset]) +
		uint32(b[offset+1])*_256 +
		uint32(b[offset+2])*_256_2 +
		uint32(b[offset+3])*_256_3
}

func putU32(b []byte, offset int, v uint32) {
	b[offset] = byte(v % _256)
	b[offset+1] = byte((v / _256) % _256)
	b[offset+2] = byte((v / (_256 * _256)) % _256)
	b[offset+3] = byte((v / (_256 * _256 * _256)) % _256)
}

func getI32(b []byte, offset int) int32   { return int32(getU32(b, offset)) }
func putI32(b []byte, offset int, v int32) { putU32(b, offset, uint32(v)) }

// Page is a fixed-size slotted page: a small fixed header, a slot directory
// that grows upward from the header, and a record heap that grows downward
// from the end of the buffer (spec.md §3 "Page").
//
// Layout (see vars.go for the exact byte widths):
//
//	[0:2]   flags (reserved, always 0)
//	[2:6]   pageNo
//	[6:10]  nextPage (NoNextPage when this is the last page of its file)
//	[10:12] numSlots
//	[12:14] lower  (end of the slot directory)
//	[14:16] upper  (start of the record heap)
//	[16:24] reserved
//	[24:lower]       slot directory, SlotSize bytes per entry
//	[upper:PageSize] record heap, growing downward
type Page struct {
	Buf []byte
}

// NewPage wraps buf (which must be exactly PageSize bytes) as an
// initialized, empty page with the given page number and no next page.
func NewPage(buf []byte, pageNo int32) Page {
	p := Page{Buf: buf}
	p.Init(pageNo)
	return p
}

// Init resets the page to an empty state with the given page number.
func (p Page) Init(pageNo int32) {
	clear(p.Buf)
	putU16(p.Buf, 0, 0)
	putI32(p.Buf, 2, pageNo)
	putI32(p.Buf, 6, NoNextPage)
	putU16(p.Buf, 10, 0)
	putU16(p.Buf, 12, HeaderSize)
	putU16(p.Buf, 14, PageSize)
}

func (p Page) PageNo() int32 { return getI32(p.Buf, 2) }

func (p Page) NextPage() int32 { return getI32(p.Buf, 6) }

func (p Page) SetNextPage(pageNo int32) { putI32(p.Buf, 6, pageNo) }

func (p Page) numSlots() int     { return int(getU16(p.Buf, 10)) }
func (p Page) setNumSlots(n int) { putU16(p.Buf, 10, uint16(n)) }

func (p Page) lower() int     { return int(getU16(p.Buf, 12)) }
func (p Page) setLower(v int) { putU16(p.Buf, 12, uint16(v)) }

func (p Page) upper() int     { return int(getU16(p.Buf, 14)) }
func (p Page) setUpper(v int) { putU16(p.Buf, 14, uint16(v)) }

func (p Page) slotOff(i int) int { return HeaderSize + i*SlotSize }

func (p Page) getSlot(i int) (offset, length, flags int) {
	o := p.slotOff(i)
	return int(getU16(p.Buf, o)), int(getU16(p.Buf, o+2)), int(getU16(p.Buf, o+4))
}

func (p Page) putSlot(i, offset, length, flags int) {
	o := p.slotOff(i)
	putU16(p.Buf, o, uint16(offset))
	putU16(p.Buf, o+2, uint16(length))
	putU16(p.Buf, o+4, uint16(flags))
}

// freeSpace returns the number of bytes available between the slot
// directory and the record heap.
func (p Page) freeSpace() int { return p.upper() - p.lower() }

// InsertRecord appends rec to the page's record heap and allocates a new
// slot for it, reusing a deleted slot's directory entry when one exists.
// Returns ErrNoSpace if there is not enough free room for both the record
// bytes and (if needed) a new slot directory entry.
func (p Page) InsertRecord(rec []byte) (RID, error) {
	reuseSlot := -1
	for i := 0; i < p.numSlots(); i++ {
		_, _, flags := p.getSlot(i)
		if flags == slotFlagDeleted {
			reuseSlot = i
			break
		}
	}

	needSlotSpace := SlotSize
	if reuseSlot != -1 {
		needSlotSpace = 0
	}
	if p.freeSpace() < len(rec)+needSlotSpace {
		return RID{}, ErrNoSpace
	}

	newUpper := p.upper() - len(rec)
	copy(p.Buf[newUpper:p.upper()], rec)
	p.setUpper(newUpper)

	slotNo := reuseSlot
	if slotNo == -1 {
		slotNo = p.numSlots()
		p.setNumSlots(slotNo + 1)
		p.setLower(p.lower() + SlotSize)
	}
	p.putSlot(slotNo, newUpper, len(rec), slotFlagUsed)

	return RID{PageNo: p.PageNo(), SlotNo: int32(slotNo)}, nil
}

// GetRecord returns a copy of the record bytes stored at rid's slot.
func (p Page) GetRecord(rid RID) ([]byte, error) {
	slotNo := int(rid.SlotNo)
	if slotNo < 0 || slotNo >= p.numSlots() {
		return nil, ErrInvalidSlotNo
	}
	offset, length, flags := p.getSlot(slotNo)
	if flags == slotFlagDeleted {
		return nil, ErrInvalidSlotNo
	}
	out := make([]byte, length)
	copy(out, p.Buf[offset:offset+length])
	return out, nil
}

// DeleteRecord marks rid's slot as deleted. The slot directory entry is
// retained (and may be reused by a later InsertRecord); the record bytes
// themselves are not reclaimed until the page is reinitialized.
func (p Page) DeleteRecord(rid RID) error {
	slotNo := int(rid.SlotNo)
	if slotNo < 0 || slotNo >= p.numSlots() {
		return ErrInvalidSlotNo
	}
	offset, length, flags := p.getSlot(slotNo)
	if flags == slotFlagDeleted {
		return ErrInvalidSlotNo
	}
	p.putSlot(slotNo, offset, length, slotFlagDeleted)
	return nil
}

// FirstRecord returns the RID of the first non-deleted slot on the page.
func (p Page) FirstRecord() (RID, error) {
	for i := 0; i < p.numSlots(); i++ {
		_, _, flags := p.getSlot(i)
		if flags != slotFlagDeleted {
			return RID{PageNo: p.PageNo(), SlotNo: int32(i)}, nil
		}
	}
	return RID{}, ErrNoRecords
}

// NextRecord returns the RID of the first non-deleted slot after cur's
// slot. Returns ErrEndOfPage once the end of the slot directory is reached.
func (p Page) NextRecord(cur RID) (RID, error) {
	for i := int(cur.SlotNo) + 1; i < p.numSlots(); i++ {
		_, _, flags := p.getSlot(i)
		if flags != slotFlagDeleted {
			return RID{PageNo: p.PageNo(), SlotNo: int32(i)}, nil
		}
	}
	return RID{}, ErrEndOfPage
}

// IsUninitialized reports whether the page buffer looks like it has never
// been formatted (all-zero lower/upper fields), which happens when a new
// page is loaded from a sparse, lazily-extended on-disk file.
func (p Page) IsUninitialized() bool {
	return getU16(p.Buf, 12) == 0 && getU16(p.Buf, 14) == 0
}

// AvailableSpace is the largest record length that can ever fit on a page:
// the page body minus the fixed header and the one slot-directory entry
// every record also consumes, even on an otherwise-empty page. Used to
// reject over-large records up front (spec.md §4.4
// InsertFileScan.insertRecord, ErrInvalidRecLen; §8 "Inserting a record
// exactly PAGESIZE-DPFIXED bytes long succeeds; one byte more returns
// INVALIDRECLEN").
func AvailableSpace() int {
	return PageSize - HeaderSize - SlotSize
}
