package memfs

// DataBuffer is the byte store owned by a regular file. Its length is always a
// whole number of blocks; bytes past the file size are zero.
type DataBuffer struct {
	blockSize int
	data      []byte
}

func newDataBuffer(blockSize int) *DataBuffer {
	return &DataBuffer{blockSize: blockSize}
}

// Blocks returns the number of blocks currently backing the buffer.
func (b *DataBuffer) Blocks() uint64 {
	return uint64(len(b.data) / b.blockSize)
}

// Grow extends the buffer to hold blocks blocks. Existing bytes are kept and
// the new tail is zero-filled. Grow never shrinks.
func (b *DataBuffer) Grow(blocks uint64) {
	want := int(blocks) * b.blockSize
	if want <= len(b.data) {
		return
	}
	grown := make([]byte, want)
	copy(grown, b.data)
	b.data = grown
}

// WriteAt copies p into the buffer at off and returns the number of bytes
// copied. The caller must have grown the buffer to cover off+len(p); bytes
// past the end are dropped.
func (b *DataBuffer) WriteAt(p []byte, off int64) int {
	if off < 0 || off >= int64(len(b.data)) {
		return 0
	}
	return copy(b.data[off:], p)
}

// ReadAt copies up to len(p) bytes starting at off into p.
func (b *DataBuffer) ReadAt(p []byte, off int64) int {
	if off < 0 || off >= int64(len(b.data)) {
		return 0
	}
	return copy(p, b.data[off:])
}
