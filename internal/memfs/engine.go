// Package memfs implements an in-memory filesystem engine. All files and
// directories live in process memory and are lost when the process exits.
//
// An Engine answers one POSIX-style call at a time per goroutine and is safe
// for concurrent use: a single readers-writer lock guards the tree structure,
// and each inode carries its own lock for data, size and timestamps.
package memfs

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/AnishMulay/memfs/internal/log_service"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	DefaultBlockSize   = 512
	DefaultTotalBlocks = 512 * 1024
	DefaultTotalInodes = 512 * 1024

	RootInodeID uint64 = 1
)

type options struct {
	blockSize   int
	totalBlocks uint64
	totalInodes uint64
	clock       func() time.Time
	ls          log_service.LogService
}

type Option func(*options)

// WithCapacity overrides the block and inode-slot pool sizes.
func WithCapacity(blocks, inodes uint64) Option {
	return func(o *options) {
		o.totalBlocks = blocks
		o.totalInodes = inodes
	}
}

func WithBlockSize(n int) Option {
	return func(o *options) { o.blockSize = n }
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

func WithLogService(ls log_service.LogService) Option {
	return func(o *options) { o.ls = ls }
}

type Engine struct {
	/////////////////////////
	// Dependencies
	/////////////////////////

	capacity  *CapacityTracker
	blockSize int
	fsID      uint64
	clock     func() time.Time
	ls        log_service.LogService

	/////////////////////////
	// Mutable state
	/////////////////////////

	// mu guards the tree structure: the path table, every directory's child
	// set, and nextIno. Lock order is mu before any Inode.mu.
	mu sync.RWMutex

	// INVARIANT: table contains "/" and it maps to root
	table   *PathTable // GUARDED_BY(mu)
	root    *Inode
	nextIno uint64 // GUARDED_BY(mu)

	handleMu   sync.Mutex
	handles    map[Handle]*Inode // GUARDED_BY(handleMu)
	nextHandle Handle            // GUARDED_BY(handleMu)
}

// New returns an engine holding only the root directory.
func New(opts ...Option) *Engine {
	o := options{
		blockSize:   DefaultBlockSize,
		totalBlocks: DefaultTotalBlocks,
		totalInodes: DefaultTotalInodes,
		clock:       time.Now,
		ls:          log_service.NewNopLogService(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.blockSize <= 0 {
		o.blockSize = DefaultBlockSize
	}

	id := uuid.New()
	e := &Engine{
		capacity:  NewCapacityTracker(uint64(o.blockSize), o.totalBlocks, o.totalInodes),
		blockSize: o.blockSize,
		fsID:      binary.BigEndian.Uint64(id[:8]),
		clock:     o.clock,
		ls:        o.ls,
		table:     NewPathTable(),
		nextIno:   RootInodeID,
		handles:   make(map[Handle]*Inode),
	}

	// The root occupies an inode slot like every other entity. A pool too
	// small to hold it cannot back a filesystem at all.
	if err := e.capacity.TryReserveInode(); err != nil {
		panic("memfs: inode pool cannot hold the root directory")
	}
	e.root = newInode(RootInodeID, KindDirectory, 0755, e.blockSize)
	e.root.touch(e.clock(), TimeAll)
	if err := e.table.Insert("/", e.root); err != nil {
		panic("memfs: " + err.Error())
	}

	e.ls.Info(log_service.LogEvent{
		Message: "Initialized in-memory filesystem",
		Metadata: map[string]any{
			"fsid":        id.String(),
			"blockSize":   o.blockSize,
			"totalBlocks": o.totalBlocks,
			"totalInodes": o.totalInodes,
		},
	})

	return e
}

// --- Lookup ---

func (e *Engine) lookup(p string) (*Inode, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.table.Lookup(p)
}

// GetAttr returns a snapshot of the metadata at p. It never mutates.
func (e *Engine) GetAttr(ctx context.Context, p string) (*Attributes, error) {
	if err := validatePath(p); err != nil {
		return nil, pathErr("getattr", p, err)
	}
	n, ok := e.lookup(p)
	if !ok {
		return nil, pathErr("getattr", p, ErrNotExist)
	}
	return n.attr(e.blockSize), nil
}

// StatFs returns the volume statistics. It has no side effects.
func (e *Engine) StatFs(ctx context.Context) VolumeStats {
	st := e.capacity.Stats()
	st.NameMax = MaxNameLen
	st.FsID = e.fsID
	st.Flags = unix.ST_NOSUID
	return st
}

// Walk visits every entity in path order until fn returns false. fn runs
// with the tree read-locked and must not call back into the engine.
func (e *Engine) Walk(ctx context.Context, fn func(p string, attr *Attributes) bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.table.Ascend(func(p string, n *Inode) bool {
		return fn(p, n.attr(e.blockSize))
	})
}

// --- Creation ---

// Mkdir creates a directory at p.
func (e *Engine) Mkdir(ctx context.Context, p string, mode uint32) (*Attributes, error) {
	n, err := e.create("mkdir", p, KindDirectory, mode)
	if err != nil {
		return nil, err
	}
	return n.attr(e.blockSize), nil
}

// Mknod creates an empty regular file at p.
func (e *Engine) Mknod(ctx context.Context, p string, mode uint32) (*Attributes, error) {
	n, err := e.create("mknod", p, KindRegular, mode)
	if err != nil {
		return nil, err
	}
	return n.attr(e.blockSize), nil
}

// create links a new entity at p. The inode slot is reserved before anything
// becomes visible; a failed reservation changes nothing.
func (e *Engine) create(op, p string, kind Kind, mode uint32) (*Inode, error) {
	if err := validatePath(p); err != nil {
		return nil, pathErr(op, p, err)
	}
	if p == "/" {
		return nil, pathErr(op, p, ErrExist)
	}
	parentPath, name := splitPath(p)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.table.Lookup(p); exists {
		return nil, pathErr(op, p, ErrExist)
	}
	parent, ok := e.table.Lookup(parentPath)
	if !ok {
		return nil, pathErr(op, p, ErrNotExist)
	}
	if !parent.isDir() {
		return nil, pathErr(op, p, ErrNotDir)
	}

	if err := e.capacity.TryReserveInode(); err != nil {
		e.ls.Warn(log_service.LogEvent{
			Message:  "Inode pool exhausted",
			Metadata: map[string]any{"op": op, "path": p},
		})
		return nil, pathErr(op, p, err)
	}

	e.nextIno++
	n := newInode(e.nextIno, kind, mode, e.blockSize)
	now := e.clock()
	n.touch(now, TimeAll)

	if err := e.table.Insert(p, n); err != nil {
		e.capacity.ReleaseInode()
		return nil, pathErr(op, p, err)
	}
	parent.addChild(name)

	parent.mu.Lock()
	parent.touch(now, TimeChange|TimeModify)
	parent.mu.Unlock()

	e.ls.Debug(log_service.LogEvent{
		Message:  "Created inode",
		Metadata: map[string]any{"op": op, "path": p, "ino": n.ino, "kind": kind.String()},
	})

	return n, nil
}

// --- Unsupported ---

// Unlink, Rmdir and Rename have no defined semantics in this engine.

func (e *Engine) Unlink(ctx context.Context, p string) error {
	return pathErr("unlink", p, ErrNotSupported)
}

func (e *Engine) Rmdir(ctx context.Context, p string) error {
	return pathErr("rmdir", p, ErrNotSupported)
}

func (e *Engine) Rename(ctx context.Context, src, dst string) error {
	return pathErr("rename", src, ErrNotSupported)
}
