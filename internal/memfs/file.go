package memfs

import (
	"context"
	"errors"
	"math"

	"github.com/AnishMulay/memfs/internal/log_service"
	"golang.org/x/sys/unix"
)

// Handle identifies an open regular file. The zero Handle is never issued.
type Handle uint64

// defaultCreateMode is the mode open(O_CREAT) gives a new file.
const defaultCreateMode = 0755

// Open returns a handle to the regular file at p. When p does not exist it is
// created empty if flags carry O_CREAT, and ErrNotExist is returned otherwise.
func (e *Engine) Open(ctx context.Context, p string, flags int) (Handle, error) {
	if err := validatePath(p); err != nil {
		return 0, pathErr("open", p, err)
	}

	n, ok := e.lookup(p)
	if !ok {
		if flags&unix.O_CREAT == 0 {
			return 0, pathErr("open", p, ErrNotExist)
		}

		var err error
		n, err = e.create("open", p, KindRegular, defaultCreateMode)
		if errors.Is(err, ErrExist) {
			// Lost a race with another creator; open what they made.
			n, ok = e.lookup(p)
			if !ok {
				return 0, pathErr("open", p, ErrNotExist)
			}
		} else if err != nil {
			return 0, err
		}
	}

	if n.isDir() {
		return 0, pathErr("open", p, ErrIsDir)
	}

	return e.newHandle(n), nil
}

// Release forgets h.
func (e *Engine) Release(ctx context.Context, h Handle) error {
	e.handleMu.Lock()
	defer e.handleMu.Unlock()

	if _, ok := e.handles[h]; !ok {
		return ErrBadHandle
	}
	delete(e.handles, h)
	return nil
}

func (e *Engine) newHandle(n *Inode) Handle {
	e.handleMu.Lock()
	defer e.handleMu.Unlock()

	e.nextHandle++
	h := e.nextHandle
	e.handles[h] = n
	return h
}

func (e *Engine) inodeFor(h Handle) (*Inode, error) {
	e.handleMu.Lock()
	defer e.handleMu.Unlock()

	n, ok := e.handles[h]
	if !ok {
		return nil, ErrBadHandle
	}
	return n, nil
}

// Read returns up to length bytes starting at offset. Reading at or past the
// end of the file yields an empty slice, not an error.
func (e *Engine) Read(ctx context.Context, h Handle, length int, offset int64) ([]byte, error) {
	if length < 0 || offset < 0 {
		return nil, ErrInvalid
	}
	n, err := e.inodeFor(h)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if offset > n.size {
		return []byte{}, nil
	}

	avail := n.size - offset
	if int64(length) < avail {
		avail = int64(length)
	}
	out := make([]byte, avail)
	n.data.ReadAt(out, offset)

	n.touch(e.clock(), TimeAccess)
	return out, nil
}

// Write stores data at offset, growing the file in whole blocks as needed.
// If the block pool cannot cover the growth the file is left untouched and
// ErrNoSpace is returned. A range ending past the largest int64 offset is
// ErrInvalid.
func (e *Engine) Write(ctx context.Context, h Handle, data []byte, offset int64) (int, error) {
	if offset < 0 || offset > math.MaxInt64-int64(len(data)) {
		return 0, ErrInvalid
	}
	n, err := e.inodeFor(h)
	if err != nil {
		return 0, err
	}

	// n.mu is held across reservation and resize so no other writer can
	// observe or reserve against the intermediate state.
	n.mu.Lock()
	defer n.mu.Unlock()

	end := offset + int64(len(data))
	needed := e.capacity.BlocksFor(end)
	if have := n.data.Blocks(); needed > have {
		if err := e.capacity.TryReserveBlocks(needed - have); err != nil {
			e.ls.Warn(log_service.LogEvent{
				Message:  "Block pool exhausted",
				Metadata: map[string]any{"ino": n.ino, "needed": needed - have},
			})
			return 0, err
		}
		n.data.Grow(needed)
	}

	n.data.WriteAt(data, offset)
	if end > n.size {
		n.size = end
	}

	n.touch(e.clock(), TimeAll)
	return len(data), nil
}
