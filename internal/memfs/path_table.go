package memfs

import "golang.org/x/exp/slices"

// PathTable maps normalized absolute paths to inodes and keeps the keys in
// lexicographic order.
//
// PathTable does no locking of its own; the engine guards it.
type PathTable struct {
	entries map[string]*Inode

	// INVARIANT: sorted, and contains exactly the keys of entries
	keys []string
}

func NewPathTable() *PathTable {
	return &PathTable{entries: make(map[string]*Inode)}
}

// Lookup is an exact-match lookup.
func (t *PathTable) Lookup(p string) (*Inode, bool) {
	n, ok := t.entries[p]
	return n, ok
}

// Insert adds p. It fails with ErrExist if p is already present.
func (t *PathTable) Insert(p string, n *Inode) error {
	if _, ok := t.entries[p]; ok {
		return ErrExist
	}
	i, _ := slices.BinarySearch(t.keys, p)
	t.keys = slices.Insert(t.keys, i, p)
	t.entries[p] = n
	return nil
}

// Ascend calls fn for every entry in path order until fn returns false.
func (t *PathTable) Ascend(fn func(p string, n *Inode) bool) {
	for _, k := range t.keys {
		if !fn(k, t.entries[k]) {
			return
		}
	}
}

func (t *PathTable) Len() int { return len(t.keys) }
