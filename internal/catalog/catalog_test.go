package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minhdu/minirel/internal/storage"
)

func TestGetInfoAndGetRelInfo(t *testing.T) {
	cat := NewInMemoryCatalog()
	cat.DefineRelation("users", []AttrDesc{
		{RelName: "users", AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
		{RelName: "users", AttrName: "name", AttrOffset: 4, AttrLen: 20, AttrType: storage.TypeString},
	})

	desc, err := cat.GetInfo("users", "name")
	require.NoError(t, err)
	require.Equal(t, 4, desc.AttrOffset)
	require.Equal(t, 20, desc.AttrLen)

	recLen, attrs, err := cat.GetRelInfo("users")
	require.NoError(t, err)
	require.Equal(t, 24, recLen)
	require.Len(t, attrs, 2)
}

func TestGetInfoUnknownRelationOrAttr(t *testing.T) {
	cat := NewInMemoryCatalog()
	cat.DefineRelation("users", []AttrDesc{
		{RelName: "users", AttrName: "id", AttrOffset: 0, AttrLen: 4, AttrType: storage.TypeInteger},
	})

	_, err := cat.GetInfo("ghosts", "id")
	require.ErrorIs(t, err, ErrRelNotFound)

	_, err = cat.GetInfo("users", "ghost_attr")
	require.ErrorIs(t, err, storage.ErrAttrNotFound)

	_, _, err = cat.GetRelInfo("ghosts")
	require.ErrorIs(t, err, ErrRelNotFound)
}
