package memfs

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Errors mapped to POSIX concepts
var (
	ErrNotExist     = errors.New("no such file or directory")
	ErrExist        = errors.New("file exists")
	ErrNotDir       = errors.New("not a directory")
	ErrIsDir        = errors.New("is a directory")
	ErrNoSpace      = errors.New("no space left on device")
	ErrNotSupported = errors.New("operation not supported")
	ErrInvalid      = errors.New("invalid argument")
	ErrBadHandle    = errors.New("bad file handle")
)

// PathError records the operation and path that caused an engine error.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

func pathErr(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}

var errnoTable = []struct {
	err   error
	errno unix.Errno
}{
	{ErrNotExist, unix.ENOENT},
	{ErrExist, unix.EEXIST},
	{ErrNotDir, unix.ENOTDIR},
	{ErrIsDir, unix.EISDIR},
	{ErrNoSpace, unix.ENOSPC},
	{ErrNotSupported, unix.ENOSYS},
	{ErrInvalid, unix.EINVAL},
	{ErrBadHandle, unix.EBADF},
}

// Errno returns the negative POSIX error code a bridge should hand back to
// the kernel for err. A nil error maps to 0; anything unrecognized maps to
// -EIO.
func Errno(err error) int32 {
	if err == nil {
		return 0
	}
	for _, e := range errnoTable {
		if errors.Is(err, e.err) {
			return -int32(e.errno)
		}
	}
	return -int32(unix.EIO)
}

// ErrorForErrno is the inverse of Errno. It accepts either sign.
func ErrorForErrno(code int32) error {
	if code == 0 {
		return nil
	}
	if code < 0 {
		code = -code
	}
	for _, e := range errnoTable {
		if int32(e.errno) == code {
			return e.err
		}
	}
	return unix.Errno(code)
}
