package posix_server

import (
	"context"

	"github.com/AnishMulay/memfs/internal/memfs"
)

// Message Type Constants
const (
	MsgGetAttr = "memfs_getattr"
	MsgStatFs  = "memfs_statfs"
	MsgMkdir   = "memfs_mkdir"
	MsgMknod   = "memfs_mknod"
	MsgOpen    = "memfs_open"
	MsgRelease = "memfs_release"
	MsgRead    = "memfs_read"
	MsgWrite   = "memfs_write"
	MsgReadDir = "memfs_readdir"

	// Defined by the protocol, answered with CodeNotSupported.
	MsgUnlink = "memfs_unlink"
	MsgRmdir  = "memfs_rmdir"
	MsgRename = "memfs_rename"
)

// HeaderErrno carries the negative POSIX error code of a failed request.
const HeaderErrno = "errno"

// FileSystem is the engine surface the server dispatches to.
type FileSystem interface {
	GetAttr(ctx context.Context, path string) (*memfs.Attributes, error)
	StatFs(ctx context.Context) memfs.VolumeStats
	Mkdir(ctx context.Context, path string, mode uint32) (*memfs.Attributes, error)
	Mknod(ctx context.Context, path string, mode uint32) (*memfs.Attributes, error)
	Open(ctx context.Context, path string, flags int) (memfs.Handle, error)
	Release(ctx context.Context, h memfs.Handle) error
	Read(ctx context.Context, h memfs.Handle, length int, offset int64) ([]byte, error)
	Write(ctx context.Context, h memfs.Handle, data []byte, offset int64) (int, error)
	ReadDir(ctx context.Context, path string) ([]memfs.DirEntry, error)
	Unlink(ctx context.Context, path string) error
	Rmdir(ctx context.Context, path string) error
	Rename(ctx context.Context, src, dst string) error
}

var _ FileSystem = (*memfs.Engine)(nil)

// --- Payload Structs ---

type GetAttrRequest struct {
	Path string `json:"path"`
}

type StatFsRequest struct{}

type MkdirRequest struct {
	Path string `json:"path"`
	Mode uint32 `json:"mode"`
}

type MknodRequest struct {
	Path string `json:"path"`
	Mode uint32 `json:"mode"`
}

type OpenRequest struct {
	Path  string `json:"path"`
	Flags int    `json:"flags"`
}

type OpenResponse struct {
	Handle memfs.Handle `json:"handle"`
}

type ReleaseRequest struct {
	Handle memfs.Handle `json:"handle"`
}

type ReadRequest struct {
	Handle memfs.Handle `json:"handle"`
	Offset int64        `json:"offset"`
	Length int          `json:"length"`
}

type WriteRequest struct {
	Handle memfs.Handle `json:"handle"`
	Offset int64        `json:"offset"`
	Data   []byte       `json:"data"`
}

type WriteResponse struct {
	Written int `json:"written"`
}

type ReadDirRequest struct {
	Path string `json:"path"`
}

type UnlinkRequest struct {
	Path string `json:"path"`
}

type RmdirRequest struct {
	Path string `json:"path"`
}

type RenameRequest struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}
