package pts

import (
	"errors"
	"fmt"
	"strings"
)

var errFieldWidth = errors.New("invalid field width")

// Reader decodes fixed and variable width integers and strings at explicit
// offsets of a decoded buffer. It holds no cursor.
type Reader struct {
	buf       []byte
	BigEndian bool
}

// NewReader wraps buf without copying it.
func NewReader(buf []byte, bigEndian bool) Reader {
	return Reader{buf: buf, BigEndian: bigEndian}
}

// Len returns the buffer length.
func (r Reader) Len() int { return len(r.buf) }

func (r Reader) check(off, width int) error {
	if off < 0 || width < 0 || off+width > len(r.buf) || off+width < off {
		return fmt.Errorf("%w: %d bytes at 0x%x, buffer is %d bytes", ErrOutOfBounds, width, off, len(r.buf))
	}
	return nil
}

// uint assembles width bytes starting at off according to the byte order.
func (r Reader) uint(off, width int) (uint64, error) {
	if err := r.check(off, width); err != nil {
		return 0, err
	}
	var v uint64
	if r.BigEndian {
		for i := 0; i < width; i++ {
			v = v<<8 | uint64(r.buf[off+i])
		}
	} else {
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(r.buf[off+i])
		}
	}
	return v, nil
}

// U8 reads an unsigned byte at off.
func (r Reader) U8(off int) (uint8, error) {
	if err := r.check(off, 1); err != nil {
		return 0, err
	}
	return r.buf[off], nil
}

// U16 reads a 16-bit unsigned integer at off.
func (r Reader) U16(off int) (uint16, error) {
	v, err := r.uint(off, 2)
	return uint16(v), err
}

// U24 reads a 24-bit unsigned integer at off.
func (r Reader) U24(off int) (uint32, error) {
	v, err := r.uint(off, 3)
	return uint32(v), err
}

// U32 reads a 32-bit unsigned integer at off.
func (r Reader) U32(off int) (uint32, error) {
	v, err := r.uint(off, 4)
	return uint32(v), err
}

// U40 reads a 40-bit unsigned integer at off.
func (r Reader) U40(off int) (uint64, error) {
	return r.uint(off, 5)
}

// U64 reads a 64-bit unsigned integer at off.
func (r Reader) U64(off int) (uint64, error) {
	return r.uint(off, 8)
}

// Bytes returns a read-only view of n bytes at off.
func (r Reader) Bytes(off, n int) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	return r.buf[off : off+n : off+n], nil
}

// String reads a 4-byte length followed by that many ASCII bytes, trims
// trailing NULs, and returns the offset just past the string.
func (r Reader) String(off int) (string, int, error) {
	n, err := r.U32(off)
	if err != nil {
		return "", off, err
	}
	b, err := r.Bytes(off+4, int(n))
	if err != nil {
		return "", off, fmt.Errorf("string length %d: %w", n, err)
	}
	return strings.TrimRight(string(b), "\x00"), off + 4 + int(n), nil
}

// VarInt reads a field whose width (1..5 bytes) was declared elsewhere.
func (r Reader) VarInt(off, width int) (int64, error) {
	var (
		v   uint64
		err error
	)
	switch width {
	case 1:
		var b uint8
		b, err = r.U8(off)
		v = uint64(b)
	case 2, 3, 4, 5:
		v, err = r.uint(off, width)
	default:
		return 0, fmt.Errorf("%w: %d", errFieldWidth, width)
	}
	return int64(v), err
}
