package relops

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/catalog"
	"github.com/minhdu/minirel/internal/heap"
	"github.com/minhdu/minirel/internal/storage"
)

func encodeInt32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func encodeString(s string, width int) []byte {
	b := make([]byte, width)
	copy(b, s)
	return b
}

func newTestEnv(t *testing.T) (*storage.LocalFileStore, *bufferpool.Manager, *catalog.InMemoryCatalog) {
	t.Helper()
	store := storage.NewLocalFileStore(t.TempDir())
	bm := bufferpool.NewManager(16)
	cat := catalog.NewInMemoryCatalog()
	return store, bm, cat
}

func usersSchema() []catalog.AttrDesc {
	return []catalog.AttrDesc{
		{RelName: "users", AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
		{RelName: "users", AttrName: "name", AttrOffset: 4, AttrLen: 20, AttrType: storage.TypeString},
	}
}

func TestInsertAppendsMatchedRecord(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))

	// Attrs supplied out of schema order: Insert must still match by name.
	rid, err := Insert(cat, store, bm, "users", []AttrInput{
		{AttrName: "name", Value: encodeString("Ada", 20)},
		{AttrName: "id", Value: encodeInt32(7)},
	})
	require.NoError(t, err)
	require.False(t, rid.IsNull())

	f, err := heap.Open(store, bm, "users")
	require.NoError(t, err)
	defer f.Close()

	rec, err := f.GetRecord(rid)
	require.NoError(t, err)
	require.Equal(t, int32(7), int32(binary.LittleEndian.Uint32(rec[0:4])))
	require.Equal(t, "Ada", string(rec[4:7]))
}

func TestInsertRejectsAttrCountMismatch(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))

	_, err := Insert(cat, store, bm, "users", []AttrInput{
		{AttrName: "id", Value: encodeInt32(1)},
	})
	require.ErrorIs(t, err, ErrAttrCountMismatch)
}

func TestDeleteWithPredicateRemovesMatches(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))

	for i := int32(0); i < 4; i++ {
		_, err := Insert(cat, store, bm, "users", []AttrInput{
			{AttrName: "id", Value: encodeInt32(i)},
			{AttrName: "name", Value: encodeString("u", 20)},
		})
		require.NoError(t, err)
	}

	deleted, err := Delete(cat, store, bm, "users", "id", storage.LT, storage.TypeInteger, encodeInt32(2))
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	f, err := heap.Open(store, bm, "users")
	require.NoError(t, err)
	require.Equal(t, int32(2), f.RecCnt())
	require.NoError(t, f.Close())
}

func TestDeleteWithoutAttrNameDeletesEverything(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))

	for i := int32(0); i < 3; i++ {
		_, err := Insert(cat, store, bm, "users", []AttrInput{
			{AttrName: "id", Value: encodeInt32(i)},
			{AttrName: "name", Value: encodeString("u", 20)},
		})
		require.NoError(t, err)
	}

	deleted, err := Delete(cat, store, bm, "users", "", storage.EQ, storage.TypeInteger, nil)
	require.NoError(t, err)
	require.Equal(t, 3, deleted)

	f, err := heap.Open(store, bm, "users")
	require.NoError(t, err)
	require.Equal(t, int32(0), f.RecCnt())
	require.NoError(t, f.Close())
}

func TestSelectProjectsMatchingRecordsWithoutPredicate(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	cat.DefineRelation("ids", []catalog.AttrDesc{
		{RelName: "ids", AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
	})
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))
	require.NoError(t, heap.CreateHeapFile(store, bm, "ids"))

	for i := int32(0); i < 3; i++ {
		_, err := Insert(cat, store, bm, "users", []AttrInput{
			{AttrName: "id", Value: encodeInt32(i)},
			{AttrName: "name", Value: encodeString("u", 20)},
		})
		require.NoError(t, err)
	}

	err := Select(cat, store, bm, "ids",
		[]ProjAttr{{RelName: "users", AttrName: "id"}},
		nil, storage.EQ, nil,
	)
	require.NoError(t, err)

	f, err := heap.Open(store, bm, "ids")
	require.NoError(t, err)
	require.Equal(t, int32(3), f.RecCnt())
	require.NoError(t, f.Close())
}

func TestSelectAppliesPredicate(t *testing.T) {
	store, bm, cat := newTestEnv(t)
	cat.DefineRelation("users", usersSchema())
	cat.DefineRelation("ids", []catalog.AttrDesc{
		{RelName: "ids", AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
	})
	require.NoError(t, heap.CreateHeapFile(store, bm, "users"))
	require.NoError(t, heap.CreateHeapFile(store, bm, "ids"))

	for i := int32(0); i < 5; i++ {
		_, err := Insert(cat, store, bm, "users", []AttrInput{
			{AttrName: "id", Value: encodeInt32(i)},
			{AttrName: "name", Value: encodeString("u", 20)},
		})
		require.NoError(t, err)
	}

	whereAttr := ProjAttr{RelName: "users", AttrName: "id"}
	err := Select(cat, store, bm, "ids",
		[]ProjAttr{{RelName: "users", AttrName: "id"}},
		&whereAttr, storage.GTE, encodeInt32(3),
	)
	require.NoError(t, err)

	f, err := heap.Open(store, bm, "ids")
	require.NoError(t, err)
	require.Equal(t, int32(2), f.RecCnt())
	require.NoError(t, f.Close())
}
