package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhdu/minirel/internal/storage"
)

type fakeHandle struct{ name string }

func (f *fakeHandle) Name() string                          { return f.name }
func (f *fakeHandle) GetFirstPage() int32                    { return 0 }
func (f *fakeHandle) AllocatePage() (int32, error)           { return 0, nil }
func (f *fakeHandle) DisposePage(pageNo int32) error         { return nil }
func (f *fakeHandle) ReadPage(pageNo int32, out []byte) error { return nil }
func (f *fakeHandle) WritePage(pageNo int32, in []byte) error { return nil }

var _ storage.FileHandle = (*fakeHandle)(nil)

func TestHashTableBucketCountIsOddCeiling(t *testing.T) {
	ht := newHashTable(10)
	require.Equal(t, 1, len(ht.buckets)%2, "bucket count must be odd")
	require.GreaterOrEqual(t, len(ht.buckets), 12)
}

func TestHashTableInsertLookupRemove(t *testing.T) {
	ht := newHashTable(8)
	fh := &fakeHandle{name: "rel"}
	key := pageKey{file: fh, pageNo: 3}

	_, err := ht.lookup(key)
	require.ErrorIs(t, err, ErrHashNotFound)

	require.NoError(t, ht.insert(key, 5))
	idx, err := ht.lookup(key)
	require.NoError(t, err)
	require.Equal(t, 5, idx)

	require.ErrorIs(t, ht.insert(key, 9), ErrHashTblError)

	require.NoError(t, ht.remove(key))
	_, err = ht.lookup(key)
	require.ErrorIs(t, err, ErrHashNotFound)
}

func TestHashTableDistinguishesPageNumbersOnSameFile(t *testing.T) {
	ht := newHashTable(8)
	fh := &fakeHandle{name: "rel"}

	require.NoError(t, ht.insert(pageKey{file: fh, pageNo: 1}, 0))
	require.NoError(t, ht.insert(pageKey{file: fh, pageNo: 2}, 1))

	idx1, err := ht.lookup(pageKey{file: fh, pageNo: 1})
	require.NoError(t, err)
	require.Equal(t, 0, idx1)

	idx2, err := ht.lookup(pageKey{file: fh, pageNo: 2})
	require.NoError(t, err)
	require.Equal(t, 1, idx2)
}
