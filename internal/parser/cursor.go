package parser

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Cursor performs positioned, bounds-checked little-endian reads over a
// window of the subfile. A cursor never reads past its window end: such
// reads fail with ErrTruncated instead of touching adjacent data.
type Cursor struct {
	src   *blockSource
	start int64 // window start (inclusive)
	end   int64 // window end (exclusive)
	pos   int64
	buf   [4]byte
}

// NewCursor returns a cursor over the first size bytes of src.
// cacheBlocks of zero disables the block cache.
func NewCursor(src io.ReaderAt, size int64, blockSize, cacheBlocks int) (*Cursor, error) {
	if src == nil {
		return nil, fmt.Errorf("nil byte source")
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative subfile size %d", ErrOutOfRange, size)
	}
	bs, err := newBlockSource(src, size, blockSize, cacheBlocks)
	if err != nil {
		return nil, err
	}
	return &Cursor{src: bs, end: size}, nil
}

// Stats returns block cache counters for the underlying source.
func (c *Cursor) Stats() BlockStats { return c.src.stats() }

// Size returns the declared size of the underlying subfile.
func (c *Cursor) Size() int64 { return c.src.size }

// Pos returns the absolute subfile offset of the next read.
func (c *Cursor) Pos() int64 { return c.pos }

// Remaining returns the number of bytes left in the window.
func (c *Cursor) Remaining() int64 { return c.end - c.pos }

// Seek moves to an absolute subfile offset. Offsets beyond the window end
// fail with ErrOutOfRange; seeking exactly to the end is allowed.
func (c *Cursor) Seek(offset int64) error {
	if offset < c.start || offset > c.end {
		return fmt.Errorf("%w: seek to 0x%X outside [0x%X, 0x%X]", ErrOutOfRange, offset, c.start, c.end)
	}
	c.pos = offset
	return nil
}

// Window returns a cursor restricted to [offset, offset+length) of the
// subfile, clipped to the subfile end. Reads that cross the clipped end
// report ErrTruncated.
func (c *Cursor) Window(offset, length int64) (*Cursor, error) {
	if offset < 0 || offset > c.src.size {
		return nil, fmt.Errorf("%w: window at 0x%X beyond subfile size 0x%X", ErrOutOfRange, offset, c.src.size)
	}
	end := offset + length
	if length < 0 || end > c.src.size {
		end = c.src.size
	}
	return &Cursor{src: c.src, start: offset, end: end, pos: offset}, nil
}

func (c *Cursor) read(n int) ([]byte, error) {
	if c.pos+int64(n) > c.end {
		return nil, fmt.Errorf("%w: %d byte read at 0x%X crosses 0x%X", ErrTruncated, n, c.pos, c.end)
	}
	b := c.buf[:n]
	if err := c.src.readAt(b, c.pos); err != nil {
		return nil, err
	}
	c.pos += int64(n)
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U24 reads a little-endian unsigned 24-bit value.
func (c *Cursor) U24() (uint32, error) {
	b, err := c.read(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// I24 reads a little-endian signed 24-bit value.
func (c *Cursor) I24() (int32, error) {
	v, err := c.U24()
	if err != nil {
		return 0, err
	}
	if v&0x800000 != 0 {
		v |= 0xFF000000
	}
	return int32(v), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Bytes reads n bytes into a new slice.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if c.pos+int64(n) > c.end {
		return nil, fmt.Errorf("%w: %d byte read at 0x%X crosses 0x%X", ErrTruncated, n, c.pos, c.end)
	}
	out := make([]byte, n)
	if err := c.src.readAt(out, c.pos); err != nil {
		return nil, err
	}
	c.pos += int64(n)
	return out, nil
}

// U8At, U16At, U24At and U32At read at an absolute offset without
// disturbing the current position.

func (c *Cursor) U8At(offset int64) (uint8, error) {
	return readAt(c, offset, (*Cursor).U8)
}

func (c *Cursor) U16At(offset int64) (uint16, error) {
	return readAt(c, offset, (*Cursor).U16)
}

func (c *Cursor) U24At(offset int64) (uint32, error) {
	return readAt(c, offset, (*Cursor).U24)
}

func (c *Cursor) U32At(offset int64) (uint32, error) {
	return readAt(c, offset, (*Cursor).U32)
}

func readAt[T any](c *Cursor, offset int64, fn func(*Cursor) (T, error)) (T, error) {
	var zero T
	saved := c.pos
	defer func() { c.pos = saved }()
	if err := c.Seek(offset); err != nil {
		return zero, err
	}
	return fn(c)
}
