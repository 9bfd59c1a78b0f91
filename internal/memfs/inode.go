package memfs

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
)

type Kind int

const (
	KindRegular Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindRegular:
		return "file"
	default:
		return "unknown"
	}
}

// Attributes is a point-in-time copy of an inode's metadata.
type Attributes struct {
	Ino        uint64    `json:"ino"`
	Kind       Kind      `json:"kind"`
	Mode       uint32    `json:"mode"`
	Nlink      uint32    `json:"nlink"`
	Size       int64     `json:"size"`
	Blocks     uint64    `json:"blocks"`
	BlockSize  uint32    `json:"blockSize"`
	UID        uint32    `json:"uid"`
	GID        uint32    `json:"gid"`
	AccessTime time.Time `json:"atime"`
	ChangeTime time.Time `json:"ctime"`
	ModifyTime time.Time `json:"mtime"`
}

func (a *Attributes) IsDir() bool { return a.Kind == KindDirectory }

// Inode is one file or directory.
type Inode struct {
	/////////////////////////
	// Constant data
	/////////////////////////

	ino  uint64
	kind Kind
	mode uint32

	/////////////////////////
	// Mutable state
	/////////////////////////

	mu sync.RWMutex

	nlink uint32    // GUARDED_BY(mu)
	size  int64     // GUARDED_BY(mu)
	atime time.Time // GUARDED_BY(mu)
	ctime time.Time // GUARDED_BY(mu)
	mtime time.Time // GUARDED_BY(mu)

	// Regular files only.
	//
	// INVARIANT: size <= data.Blocks() * blockSize
	data *DataBuffer // GUARDED_BY(mu)

	// Directories only: names of direct children in sorted order. This is
	// part of the tree structure, so it is guarded by the engine's table lock
	// rather than mu.
	children []string
}

func newInode(ino uint64, kind Kind, perm uint32, blockSize int) *Inode {
	n := &Inode{
		ino:   ino,
		kind:  kind,
		nlink: 1,
	}
	switch kind {
	case KindDirectory:
		n.mode = unix.S_IFDIR | (perm & 07777)
	default:
		n.mode = unix.S_IFREG | (perm & 07777)
		n.data = newDataBuffer(blockSize)
	}
	return n
}

func (n *Inode) isDir() bool { return n.kind == KindDirectory }

// attrLocked snapshots n. LOCKS_REQUIRED(n.mu) for reading.
func (n *Inode) attrLocked(blockSize int) *Attributes {
	a := &Attributes{
		Ino:        n.ino,
		Kind:       n.kind,
		Mode:       n.mode,
		Nlink:      n.nlink,
		BlockSize:  uint32(blockSize),
		AccessTime: n.atime,
		ChangeTime: n.ctime,
		ModifyTime: n.mtime,
	}
	if n.data != nil {
		a.Size = n.size
		a.Blocks = n.data.Blocks()
	}
	return a
}

func (n *Inode) attr(blockSize int) *Attributes {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.attrLocked(blockSize)
}

// addChild records name as a direct child. LOCKS_REQUIRED(engine.mu)
func (n *Inode) addChild(name string) {
	i, found := slices.BinarySearch(n.children, name)
	if found {
		return
	}
	n.children = slices.Insert(n.children, i, name)
}
