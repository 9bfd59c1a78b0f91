package memfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathTable_InsertLookup(t *testing.T) {
	tbl := NewPathTable()
	n := newInode(2, KindRegular, 0644, 512)

	require.NoError(t, tbl.Insert("/a", n))
	assert.ErrorIs(t, tbl.Insert("/a", newInode(3, KindRegular, 0644, 512)), ErrExist)

	got, ok := tbl.Lookup("/a")
	require.True(t, ok)
	assert.Same(t, n, got)

	_, ok = tbl.Lookup("/a/")
	assert.False(t, ok, "lookup is exact-match only")
	assert.Equal(t, 1, tbl.Len())
}

func TestPathTable_AscendSorted(t *testing.T) {
	tbl := NewPathTable()
	for i, p := range []string{"/b/c", "/", "/b", "/a", "/b-c", "/ab"} {
		require.NoError(t, tbl.Insert(p, newInode(uint64(i+1), KindRegular, 0644, 512)))
	}

	var got []string
	tbl.Ascend(func(p string, _ *Inode) bool {
		got = append(got, p)
		return true
	})
	assert.Equal(t, []string{"/", "/a", "/ab", "/b", "/b-c", "/b/c"}, got)
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		ok   bool
	}{
		{"/", true},
		{"/a", true},
		{"/a/b c/d.txt", true},
		{"", false},
		{"a", false},
		{"/a/", false},
		{"//a", false},
		{"/a/./b", false},
		{"/a/../b", false},
		{"/a\x00", false},
	}
	for _, tt := range tests {
		err := validatePath(tt.path)
		if tt.ok {
			assert.NoError(t, err, "validatePath(%q)", tt.path)
		} else {
			assert.ErrorIs(t, err, ErrInvalid, "validatePath(%q)", tt.path)
		}
	}
}

func TestSplitJoinPath(t *testing.T) {
	tests := []struct {
		path, parent, name string
	}{
		{"/a", "/", "a"},
		{"/a/b", "/a", "b"},
		{"/a/b/c", "/a/b", "c"},
	}
	for _, tt := range tests {
		parent, name := splitPath(tt.path)
		assert.Equal(t, tt.parent, parent)
		assert.Equal(t, tt.name, name)
		assert.Equal(t, tt.path, joinPath(parent, name))
	}
}
