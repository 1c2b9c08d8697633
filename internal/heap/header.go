package heap

import (
	"github.com/minhdu/minirel/internal/bx"
	"github.com/minhdu/minirel/internal/storage"
)

// maxNameSize bounds the relation name stored in a file header page
// (spec.md §6 "File header page layout on disk").
const maxNameSize = 48

const (
	hdrNameOff      = 0
	hdrFirstPageOff = maxNameSize
	hdrLastPageOff  = hdrFirstPageOff + 4
	hdrPageCntOff   = hdrLastPageOff + 4
	hdrRecCntOff    = hdrPageCntOff + 4
)

// headerPage is a thin view over the raw bytes of a heap file's first
// page: { fileName: char[maxNameSize], firstPage, lastPage, pageCnt,
// recCnt int32 }, the rest padding to PageSize.
type headerPage struct {
	buf []byte
}

func newHeaderView(p *storage.Page) headerPage { return headerPage{buf: p.Buf} }

func (h headerPage) setFileName(name string) {
	b := []byte(name)
	if len(b) > maxNameSize-1 {
		b = b[:maxNameSize-1]
	}
	clear(h.buf[hdrNameOff : hdrNameOff+maxNameSize])
	copy(h.buf[hdrNameOff:], b)
}

func (h headerPage) fileName() string {
	raw := h.buf[hdrNameOff : hdrNameOff+maxNameSize]
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

func (h headerPage) firstPage() int32     { return int32(bx.U32At(h.buf, hdrFirstPageOff)) }
func (h headerPage) setFirstPage(v int32) { bx.PutU32At(h.buf, hdrFirstPageOff, uint32(v)) }

func (h headerPage) lastPage() int32     { return int32(bx.U32At(h.buf, hdrLastPageOff)) }
func (h headerPage) setLastPage(v int32) { bx.PutU32At(h.buf, hdrLastPageOff, uint32(v)) }

func (h headerPage) pageCnt() int32     { return int32(bx.U32At(h.buf, hdrPageCntOff)) }
func (h headerPage) setPageCnt(v int32) { bx.PutU32At(h.buf, hdrPageCntOff, uint32(v)) }

func (h headerPage) recCnt() int32     { return int32(bx.U32At(h.buf, hdrRecCntOff)) }
func (h headerPage) setRecCnt(v int32) { bx.PutU32At(h.buf, hdrRecCntOff, uint32(v)) }
