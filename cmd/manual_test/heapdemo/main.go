// heapdemo exercises the buffer manager, heap-file layer, and relational
// operators end to end: create a relation, insert a few records, select a
// projection into a result relation, then delete one record. Grounded on
// the teacher's cmd/manual_test/database demo.
package main

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"

	"github.com/minhdu/minirel/internal/bufferpool"
	"github.com/minhdu/minirel/internal/catalog"
	"github.com/minhdu/minirel/internal/config"
	"github.com/minhdu/minirel/internal/heap"
	"github.com/minhdu/minirel/internal/relops"
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

func main() {
	cfg := config.Default()
	cfg.Storage.DataDir = "./basedir"

	if err := run(cfg); err != nil {
		slog.Error("heapdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	store := storage.NewLocalFileStore(cfg.Storage.DataDir)
	bm := bufferpool.NewManager(cfg.BufferPool.Frames)

	const users = "users"
	const usersById = "users_by_id"

	if err := heap.CreateHeapFile(store, bm, users); err != nil {
		return fmt.Errorf("create %s: %w", users, err)
	}
	if err := heap.CreateHeapFile(store, bm, usersById); err != nil {
		return fmt.Errorf("create %s: %w", usersById, err)
	}

	cat := catalog.NewInMemoryCatalog()
	cat.DefineRelation(users, []catalog.AttrDesc{
		{RelName: users, AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
		{RelName: users, AttrName: "name", AttrOffset: 4, AttrLen: 20, AttrType: storage.TypeString},
	})
	cat.DefineRelation(usersById, []catalog.AttrDesc{
		{RelName: usersById, AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
	})

	people := []struct {
		id   int32
		name string
	}{
		{1, "Ada"},
		{2, "Grace"},
		{3, "Alan"},
	}
	for _, p := range people {
		rid, err := relops.Insert(cat, store, bm, users, []relops.AttrInput{
			{AttrName: "id", Value: encodeInt32(p.id)},
			{AttrName: "name", Value: encodeString(p.name, 20)},
		})
		if err != nil {
			return fmt.Errorf("insert %s: %w", p.name, err)
		}
		slog.Info("inserted", "name", p.name, "rid", rid)
	}

	whereAttr := relops.ProjAttr{RelName: users, AttrName: "id"}
	if err := relops.Select(cat, store, bm, usersById,
		[]relops.ProjAttr{{RelName: users, AttrName: "id"}},
		&whereAttr, storage.GT, encodeInt32(1),
	); err != nil {
		return fmt.Errorf("select: %w", err)
	}

	deleted, err := relops.Delete(cat, store, bm, users, "id", storage.EQ, storage.TypeInteger, encodeInt32(2))
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	slog.Info("deleted", "count", deleted)

	f, err := heap.Open(store, bm, users)
	if err != nil {
		return err
	}
	slog.Info("final state", "relation", users, "recCnt", f.RecCnt(), "pageCnt", f.PageCnt())
	return f.Close()
}
