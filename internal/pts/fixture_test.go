package pts

import (
	"encoding/binary"
	"testing"
)

// enc writes integers, strings and blocks in one byte order.
type enc struct {
	big bool
}

func (e enc) order() binary.ByteOrder {
	if e.big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e enc) u16(v uint16) []byte {
	b := make([]byte, 2)
	e.order().PutUint16(b, v)
	return b
}

func (e enc) u32(v uint32) []byte {
	b := make([]byte, 4)
	e.order().PutUint32(b, v)
	return b
}

func (e enc) u64(v uint64) []byte {
	b := make([]byte, 8)
	e.order().PutUint64(b, v)
	return b
}

// uint writes the low width bytes of v.
func (e enc) uint(v uint64, width int) []byte {
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint(8 * i)
		if e.big {
			b[width-1-i] = byte(v >> shift)
		} else {
			b[i] = byte(v >> shift)
		}
	}
	return b
}

func (e enc) str(s string) []byte {
	return append(e.u32(uint32(len(s))), s...)
}

// block encodes marker, type, size and a content region made of the tag
// followed by body.
func (e enc) block(typ uint16, ct ContentType, body ...[]byte) []byte {
	content := e.u16(uint16(ct))
	for _, b := range body {
		content = append(content, b...)
	}
	out := []byte{BlockMarker}
	out = append(out, e.u16(typ)...)
	out = append(out, e.u32(uint32(len(content)))...)
	return append(out, content...)
}

func zeros(n int) []byte {
	return make([]byte, n)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// regionMeta encodes the control header and values of region metadata with
// the given widths.
func (e enc) regionMeta(start, offset, length int64, startW, offsetW, lengthW int) []byte {
	ctl := zeros(regionControlSize)
	if e.big {
		ctl[4], ctl[3], ctl[2] = byte(offsetW<<4), byte(lengthW<<4), byte(startW<<4)
	} else {
		ctl[1], ctl[2], ctl[3] = byte(offsetW<<4), byte(lengthW<<4), byte(startW<<4)
	}
	return cat(ctl,
		e.uint(uint64(offset), offsetW),
		e.uint(uint64(length), lengthW),
		e.uint(uint64(start), startW),
	)
}

// rawBlocks lays blocks out after an empty file header.
func rawBlocks(blocks ...[]byte) []byte {
	return cat(zeros(HeaderSize), cat(blocks...))
}

// sessionBuilder assembles a decoded session buffer: the clear-text header,
// a version block at 0x1f, then the given blocks.
type sessionBuilder struct {
	enc
	buf []byte
}

func newSessionBuilder(bigEndian bool, version int) *sessionBuilder {
	b := &sessionBuilder{enc: enc{big: bigEndian}}
	b.buf = append(b.buf, formatMarker)
	b.buf = append(b.buf, bitcode...)
	var flag byte
	if bigEndian {
		flag = 1
	}
	b.buf = append(b.buf, flag, byte(CipherV5), 0)
	b.buf = append(b.buf, zeros(versionBlockPos-len(b.buf))...)
	b.buf = append(b.buf, b.block(1, CTInfoPathOfSession, zeros(18), b.u32(uint32(version-2)), zeros(2))...)
	return b
}

func (b *sessionBuilder) add(blocks ...[]byte) *sessionBuilder {
	for _, blk := range blocks {
		b.buf = append(b.buf, blk...)
	}
	return b
}

func (b *sessionBuilder) bytes() []byte {
	return append([]byte(nil), b.buf...)
}

// encrypt obfuscates a decoded buffer the way a writer would.
func encrypt(t *testing.T, decoded []byte, kind CipherKind, seed byte) []byte {
	t.Helper()
	delta, err := DeriveDelta(kind, seed)
	if err != nil {
		t.Fatalf("DeriveDelta: %v", err)
	}
	key := NewKeyTable(delta)
	raw := make([]byte, len(decoded))
	copy(raw, decoded[:HeaderSize])
	raw[cipherTypeOffset] = byte(kind)
	raw[cipherSeedOffset] = seed
	key.Apply(kind, raw[HeaderSize:], decoded[HeaderSize:], HeaderSize)
	return raw
}
