package memlib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AnishMulay/memfs/internal/communication"
	"github.com/AnishMulay/memfs/internal/memfs"
	ps "github.com/AnishMulay/memfs/internal/posix_server"
	"golang.org/x/sys/unix"
)

// readChunk is the largest read ReadFile issues in one request.
const readChunk = 64 * 1024

func (c *Client) GetAttr(ctx context.Context, path string) (*memfs.Attributes, error) {
	var attr memfs.Attributes
	if err := c.call(ctx, "getattr", path, ps.MsgGetAttr, ps.GetAttrRequest{Path: path}, &attr); err != nil {
		return nil, err
	}
	return &attr, nil
}

func (c *Client) StatFs(ctx context.Context) (*memfs.VolumeStats, error) {
	var st memfs.VolumeStats
	if err := c.call(ctx, "statfs", "/", ps.MsgStatFs, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Mkdir(ctx context.Context, path string, mode uint32) (*memfs.Attributes, error) {
	var attr memfs.Attributes
	if err := c.call(ctx, "mkdir", path, ps.MsgMkdir, ps.MkdirRequest{Path: path, Mode: mode}, &attr); err != nil {
		return nil, err
	}
	return &attr, nil
}

func (c *Client) Mknod(ctx context.Context, path string, mode uint32) (*memfs.Attributes, error) {
	var attr memfs.Attributes
	if err := c.call(ctx, "mknod", path, ps.MsgMknod, ps.MknodRequest{Path: path, Mode: mode}, &attr); err != nil {
		return nil, err
	}
	return &attr, nil
}

func (c *Client) Open(ctx context.Context, path string, flags int) (memfs.Handle, error) {
	var resp ps.OpenResponse
	if err := c.call(ctx, "open", path, ps.MsgOpen, ps.OpenRequest{Path: path, Flags: flags}, &resp); err != nil {
		return 0, err
	}
	return resp.Handle, nil
}

func (c *Client) Release(ctx context.Context, h memfs.Handle) error {
	return c.call(ctx, "release", handleName(h), ps.MsgRelease, ps.ReleaseRequest{Handle: h}, nil)
}

func (c *Client) Read(ctx context.Context, h memfs.Handle, length int, offset int64) ([]byte, error) {
	var data []byte
	req := ps.ReadRequest{Handle: h, Offset: offset, Length: length}
	if err := c.call(ctx, "read", handleName(h), ps.MsgRead, req, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (c *Client) Write(ctx context.Context, h memfs.Handle, data []byte, offset int64) (int, error) {
	var resp ps.WriteResponse
	req := ps.WriteRequest{Handle: h, Offset: offset, Data: data}
	if err := c.call(ctx, "write", handleName(h), ps.MsgWrite, req, &resp); err != nil {
		return 0, err
	}
	return resp.Written, nil
}

func (c *Client) ReadDir(ctx context.Context, path string) ([]memfs.DirEntry, error) {
	var entries []memfs.DirEntry
	if err := c.call(ctx, "readdir", path, ps.MsgReadDir, ps.ReadDirRequest{Path: path}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// WriteFile writes data at offset 0 of path, creating the file if needed.
func (c *Client) WriteFile(ctx context.Context, path string, data []byte) error {
	h, err := c.Open(ctx, path, unix.O_CREAT|unix.O_WRONLY)
	if err != nil {
		return err
	}
	_, werr := c.Write(ctx, h, data, 0)
	rerr := c.Release(ctx, h)
	if werr != nil {
		return werr
	}
	return rerr
}

// ReadFile returns the whole content of path.
func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	h, err := c.Open(ctx, path, unix.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Release(ctx, h) }()

	var out []byte
	for {
		chunk, err := c.Read(ctx, h, readChunk, int64(len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if len(chunk) < readChunk {
			return out, nil
		}
	}
}

func (c *Client) call(ctx context.Context, op, target, msgType string, payload any, out any) error {
	if c == nil || c.Comm == nil {
		return fmt.Errorf("memfs client is not connected")
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("memfs server address is empty")
	}

	msg := communication.Message{From: c.From, Type: msgType}
	if payload != nil {
		msg.Payload = payload
	}

	resp, err := c.Comm.Send(ctx, c.ServerAddr, msg)
	if err != nil {
		return fmt.Errorf("%s %q failed: %w", op, target, err)
	}
	if resp.Code != communication.CodeOK {
		return responseError(op, target, resp)
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s response for %q: %w", op, target, err)
	}
	return nil
}

func handleName(h memfs.Handle) string {
	return "handle " + strconv.FormatUint(uint64(h), 10)
}

// responseError rebuilds an engine error from a failed response so callers
// can use errors.Is against the memfs sentinels.
func responseError(op string, target string, resp *communication.Response) error {
	body := strings.TrimSpace(string(resp.Body))
	if body == "" {
		body = string(resp.Code)
	}

	cause := errorForCode(resp.Code)
	if raw, ok := resp.Headers[ps.HeaderErrno]; ok {
		if errno, err := strconv.Atoi(raw); err == nil {
			if e := memfs.ErrorForErrno(int32(errno)); e != nil {
				cause = e
			}
		}
	}

	return &memfs.PathError{Op: op, Path: target, Err: &remoteError{cause: cause, code: resp.Code, body: body}}
}

func errorForCode(code communication.SandCode) error {
	switch code {
	case communication.CodeNotFound:
		return memfs.ErrNotExist
	case communication.CodeAlreadyExists:
		return memfs.ErrExist
	case communication.CodeNoSpace:
		return memfs.ErrNoSpace
	case communication.CodeNotSupported:
		return memfs.ErrNotSupported
	case communication.CodeBadRequest:
		return memfs.ErrInvalid
	default:
		return errors.New("internal server error")
	}
}

type remoteError struct {
	cause error
	code  communication.SandCode
	body  string
}

func (e *remoteError) Error() string { return fmt.Sprintf("%s (%s)", e.body, e.code) }
func (e *remoteError) Unwrap() error { return e.cause }

func (c *Client) Unlink(ctx context.Context, path string) error {
	return c.call(ctx, "unlink", path, ps.MsgUnlink, ps.UnlinkRequest{Path: path}, nil)
}

func (c *Client) Rmdir(ctx context.Context, path string) error {
	return c.call(ctx, "rmdir", path, ps.MsgRmdir, ps.RmdirRequest{Path: path}, nil)
}

func (c *Client) Rename(ctx context.Context, src, dst string) error {
	return c.call(ctx, "rename", src, ps.MsgRename, ps.RenameRequest{Src: src, Dst: dst}, nil)
}
