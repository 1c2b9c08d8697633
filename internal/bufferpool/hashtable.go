package bufferpool

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/minhdu/minirel/internal/storage"
)

// ErrHashNotFound and ErrHashTblError are the buffer hash table's status
// values (spec.md §4.2): lookup/remove miss, or a structural inconsistency
// (e.g. inserting a key that is already present).
var (
	ErrHashNotFound = errors.New("bufferpool: hash table miss")
	ErrHashTblError = errors.New("bufferpool: hash table structural error")
)

// pageKey is the buffer hash table's key: (file identity, page number).
// storage.FileHandle is implemented by pointer types in this module, so it
// is comparable and usable directly as a map-free chained-bucket key.
type pageKey struct {
	file   storage.FileHandle
	pageNo int32
}

type hashEntry struct {
	key      pageKey
	frameIdx int
}

// hashTable is a fixed-bucket chained hash table mapping (file, pageNo) to
// a frame index, grounded on the original Minibase BufHashTbl and generalized
// from the teacher's PageTag-keyed map in global_pool.go. It never owns page
// bytes — only an index into the buffer manager's frame array.
type hashTable struct {
	buckets [][]hashEntry
}

// newHashTable sizes the bucket array as ⌈1.2·capacity⌉ rounded up to the
// next odd number, per spec.md §4.2 (mirroring the original C++
// constructor's `((int)(bufs*1.2)*2)/2+1`).
func newHashTable(capacity int) *hashTable {
	n := (capacity*12 + 9) / 10 // ceil(1.2*capacity)
	if n < 1 {
		n = 1
	}
	if n%2 == 0 {
		n++
	}
	return &hashTable{buckets: make([][]hashEntry, n)}
}

func (h *hashTable) bucketOf(key pageKey) int {
	hsh := fnv.New64a()
	fmt.Fprintf(hsh, "%p:%d", key.file, key.pageNo)
	return int(hsh.Sum64() % uint64(len(h.buckets)))
}

func (h *hashTable) lookup(key pageKey) (int, error) {
	b := h.bucketOf(key)
	for _, e := range h.buckets[b] {
		if e.key == key {
			return e.frameIdx, nil
		}
	}
	return -1, ErrHashNotFound
}

func (h *hashTable) insert(key pageKey, frameIdx int) error {
	b := h.bucketOf(key)
	for _, e := range h.buckets[b] {
		if e.key == key {
			return ErrHashTblError
		}
	}
	h.buckets[b] = append(h.buckets[b], hashEntry{key: key, frameIdx: frameIdx})
	return nil
}

func (h *hashTable) remove(key pageKey) error {
	b := h.bucketOf(key)
	chain := h.buckets[b]
	for i, e := range chain {
		if e.key == key {
			h.buckets[b] = append(chain[:i], chain[i+1:]...)
			return nil
		}
	}
	return ErrHashNotFound
}
