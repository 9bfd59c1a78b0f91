package memfs

import "context"

// DirEntry is one line of a directory listing.
type DirEntry struct {
	Name string      `json:"name"`
	Attr *Attributes `json:"attr"`
}

// ReadDir lists the directory at p: ".", then ".." unless p is the root, then
// every direct child in name order.
func (e *Engine) ReadDir(ctx context.Context, p string) ([]DirEntry, error) {
	if err := validatePath(p); err != nil {
		return nil, pathErr("readdir", p, err)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	dir, ok := e.table.Lookup(p)
	if !ok {
		return nil, pathErr("readdir", p, ErrNotExist)
	}
	if !dir.isDir() {
		return nil, pathErr("readdir", p, ErrNotDir)
	}

	entries := make([]DirEntry, 0, len(dir.children)+2)
	entries = append(entries, DirEntry{Name: ".", Attr: dir.attr(e.blockSize)})
	if p != "/" {
		parentPath, _ := splitPath(p)
		parent, _ := e.table.Lookup(parentPath)
		entries = append(entries, DirEntry{Name: "..", Attr: parent.attr(e.blockSize)})
	}

	for _, name := range dir.children {
		child, ok := e.table.Lookup(joinPath(p, name))
		if !ok {
			continue
		}
		entries = append(entries, DirEntry{Name: name, Attr: child.attr(e.blockSize)})
	}

	return entries, nil
}
