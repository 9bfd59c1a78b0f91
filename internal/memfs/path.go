package memfs

import (
	"path"
	"strings"
)

// MaxNameLen is the longest single path component accepted.
const MaxNameLen = 255

// validatePath accepts only absolute, already-clean paths with components of
// at most MaxNameLen bytes and no NUL bytes.
func validatePath(p string) error {
	if p == "" || p[0] != '/' {
		return ErrInvalid
	}
	if path.Clean(p) != p {
		return ErrInvalid
	}
	if strings.IndexByte(p, 0) >= 0 {
		return ErrInvalid
	}
	for _, name := range strings.Split(p[1:], "/") {
		if len(name) > MaxNameLen {
			return ErrInvalid
		}
	}
	return nil
}

// splitPath splits a valid non-root path into its parent directory and base
// name.
func splitPath(p string) (parent, name string) {
	i := strings.LastIndexByte(p, '/')
	if i == 0 {
		return "/", p[1:]
	}
	return p[:i], p[i+1:]
}

// joinPath is the inverse of splitPath.
func joinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
