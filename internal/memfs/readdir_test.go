package memfs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryNames(entries []DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// scanChildren derives the direct children of dir from path structure alone.
func scanChildren(e *Engine, dir string) []string {
	prefix := dir
	if dir != "/" {
		prefix = dir + "/"
	}

	var names []string
	e.Walk(context.Background(), func(p string, _ *Attributes) bool {
		if len(p) > len(prefix) && strings.HasPrefix(p, prefix) && !strings.Contains(p[len(prefix):], "/") {
			names = append(names, p[len(prefix):])
		}
		return true
	})
	return names
}

func TestEngine_ReadDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		setupFn func(*testing.T, *Engine)
		want    []string
		wantErr error
	}{
		{name: "empty root", path: "/", want: []string{"."}},
		{
			name: "flat",
			path: "/",
			setupFn: func(t *testing.T, e *Engine) {
				mustMknod(t, e, "/a")
				mustMkdir(t, e, "/b")
			},
			want: []string{".", "a", "b"},
		},
		{
			name: "nested",
			path: "/b",
			setupFn: func(t *testing.T, e *Engine) {
				mustMknod(t, e, "/a")
				mustMkdir(t, e, "/b")
				mustMknod(t, e, "/b/c")
			},
			want: []string{".", "..", "c"},
		},
		{
			name: "grandchildren excluded",
			path: "/",
			setupFn: func(t *testing.T, e *Engine) {
				mustMkdir(t, e, "/b")
				mustMkdir(t, e, "/b/c")
				mustMknod(t, e, "/b/c/d")
			},
			want: []string{".", "b"},
		},
		{
			name: "sibling prefix is not a child",
			path: "/b",
			setupFn: func(t *testing.T, e *Engine) {
				mustMkdir(t, e, "/b")
				mustMknod(t, e, "/b/x")
				mustMknod(t, e, "/bb")
				mustMkdir(t, e, "/bc")
				mustMknod(t, e, "/bc/y")
			},
			want: []string{".", "..", "x"},
		},
		{
			name: "names sorting below the separator",
			path: "/d",
			setupFn: func(t *testing.T, e *Engine) {
				mustMkdir(t, e, "/d")
				mustMknod(t, e, "/d-1")
				mustMknod(t, e, "/d.txt")
				mustMknod(t, e, "/d/z")
				mustMknod(t, e, "/d/a")
			},
			want: []string{".", "..", "a", "z"},
		},
		{name: "missing", path: "/nope", wantErr: ErrNotExist},
		{
			name: "not a directory",
			path: "/f",
			setupFn: func(t *testing.T, e *Engine) {
				mustMknod(t, e, "/f")
			},
			wantErr: ErrNotDir,
		},
		{name: "invalid", path: "b", wantErr: ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			if tt.setupFn != nil {
				tt.setupFn(t, e)
			}

			entries, err := e.ReadDir(context.Background(), tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, entryNames(entries))

			var children []string
			for _, name := range entryNames(entries) {
				if name != "." && name != ".." {
					children = append(children, name)
				}
			}
			assert.Equal(t, scanChildren(e, tt.path), children)
		})
	}
}

func TestEngine_ReadDirAttributes(t *testing.T) {
	e := New()
	ctx := context.Background()
	mustMkdir(t, e, "/b")
	mustMknod(t, e, "/b/c")

	entries, err := e.ReadDir(ctx, "/b")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	self, err := e.GetAttr(ctx, "/b")
	require.NoError(t, err)
	root, err := e.GetAttr(ctx, "/")
	require.NoError(t, err)
	child, err := e.GetAttr(ctx, "/b/c")
	require.NoError(t, err)

	assert.Equal(t, self, entries[0].Attr)
	assert.Equal(t, root, entries[1].Attr)
	assert.Equal(t, child, entries[2].Attr)
}

func mustMkdir(t *testing.T, e *Engine, p string) {
	t.Helper()
	_, err := e.Mkdir(context.Background(), p, 0755)
	require.NoError(t, err)
}

func mustMknod(t *testing.T, e *Engine, p string) {
	t.Helper()
	_, err := e.Mknod(context.Background(), p, 0644)
	require.NoError(t, err)
}
