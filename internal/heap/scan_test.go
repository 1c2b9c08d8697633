package heap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhdu/minirel/internal/storage"
)

func TestScanNextVisitsAllRecordsInOrder(t *testing.T) {
	store, bm := newTestEnv(t)
	require.NoError(t, CreateHeapFile(store, bm, "rel"))

	ins, err := OpenInsertScan(store, bm, "rel")
	require.NoError(t, err)
	for i := int32(0); i < 4; i++ {
		_, err := ins.InsertRecord(encodeRecord(i))
		require.NoError(t, err)
	}
	require.NoError(t, ins.Close())

	scan, err := OpenScan(store, bm, "rel")
	require.NoError(t, err)

	var seen []int32
	for {
		_, err := scan.ScanNext()
		if err != nil {
			require.ErrorIs(t, err, storage.ErrFileEOF)
			break
		}
		rec, err := scan.GetRecord()
		require.NoError(t, err)
		seen = append(seen, int32(binary.LittleEndian.Uint32(rec)))
	}
	require.Equal(t, []int32{0, 1, 2, 3}, seen)
	require.NoError(t, scan.EndScan())
}

func TestScanWithPredicateFiltersRecords(t *testing.T) {
	store, bm := newTestEnv(t)
	require.NoError(t, CreateHeapFile(store, bm, "rel"))

	ins, err := OpenInsertScan(store, bm, "rel")
	require.NoError(t, err)
	for i := int32(0); i < 5; i++ {
		_, err := ins.InsertRecord(encodeRecord(i))
		require.NoError(t, err)
	}
	require.NoError(t, ins.Close())

	scan, err := OpenScan(store, bm, "rel")
	require.NoError(t, err)
	defer scan.EndScan()

	require.NoError(t, scan.StartScan(0, 4, storage.TypeInteger, encodeRecord(2), storage.GT))

	var seen []int32
	for {
		_, err := scan.ScanNext()
		if err != nil {
			require.ErrorIs(t, err, storage.ErrFileEOF)
			break
		}
		rec, err := scan.GetRecord()
		require.NoError(t, err)
		seen = append(seen, int32(binary.LittleEndian.Uint32(rec)))
	}
	require.Equal(t, []int32{3, 4}, seen)
}

func TestStartScanRejectsBadParams(t *testing.T) {
	store, bm := newTestEnv(t)
	require.NoError(t, CreateHeapFile(store, bm, "rel"))

	scan, err := OpenScan(store, bm, "rel")
	require.NoError(t, err)
	defer scan.EndScan()

	require.ErrorIs(t, scan.StartScan(-1, 4, storage.TypeInteger, encodeRecord(1), storage.EQ), storage.ErrBadScanParm)
	require.ErrorIs(t, scan.StartScan(0, 3, storage.TypeInteger, encodeRecord(1), storage.EQ), storage.ErrBadScanParm)
}

func TestScanDeleteRecordUpdatesRecCnt(t *testing.T) {
	store, bm := newTestEnv(t)
	require.NoError(t, CreateHeapFile(store, bm, "rel"))

	ins, err := OpenInsertScan(store, bm, "rel")
	require.NoError(t, err)
	var rids []storage.RID
	for i := int32(0); i < 3; i++ {
		rid, err := ins.InsertRecord(encodeRecord(i))
		require.NoError(t, err)
		rids = append(rids, rid)
	}
	require.NoError(t, ins.Close())

	scan, err := OpenScan(store, bm, "rel")
	require.NoError(t, err)
	_, err = scan.ScanNext()
	require.NoError(t, err)
	require.NoError(t, scan.DeleteRecord())
	require.NoError(t, scan.EndScan())

	f, err := Open(store, bm, "rel")
	require.NoError(t, err)
	require.Equal(t, int32(2), f.RecCnt())

	_, err = f.GetRecord(rids[0])
	require.ErrorIs(t, err, storage.ErrInvalidSlotNo)
	require.NoError(t, f.Close())
}

func TestMarkAndResetScan(t *testing.T) {
	store, bm := newTestEnv(t)
	require.NoError(t, CreateHeapFile(store, bm, "rel"))

	ins, err := OpenInsertScan(store, bm, "rel")
	require.NoError(t, err)
	for i := int32(0); i < 3; i++ {
		_, err := ins.InsertRecord(encodeRecord(i))
		require.NoError(t, err)
	}
	require.NoError(t, ins.Close())

	scan, err := OpenScan(store, bm, "rel")
	require.NoError(t, err)
	defer scan.EndScan()

	_, err = scan.ScanNext()
	require.NoError(t, err)
	scan.MarkScan()

	_, err = scan.ScanNext()
	require.NoError(t, err)
	rec, err := scan.GetRecord()
	require.NoError(t, err)
	require.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(rec)))

	require.NoError(t, scan.ResetScan())
	rec, err = scan.GetRecord()
	require.NoError(t, err)
	require.Equal(t, int32(0), int32(binary.LittleEndian.Uint32(rec)))
}
