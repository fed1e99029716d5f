package rom

import (
	"encoding/binary"
	"fmt"

	"github.com/mogaika/scene_patcher/utils"
)

// Buffer is a growable big-endian byte store.
// Reads outside of the buffer panic with *RangeError, writes past the end grow it.
type Buffer struct {
	name  string
	buf   []byte
	dirty bool
}

func NewBuffer(name string, b []byte) *Buffer {
	return &Buffer{name: name, buf: b}
}

func (b *Buffer) Name() string { return b.name }
func (b *Buffer) Len() int     { return len(b.buf) }
func (b *Buffer) Raw() []byte  { return b.buf }

// Dirty reports whether anything was written into buffer since creation
func (b *Buffer) Dirty() bool { return b.dirty }

func (b *Buffer) String() string {
	return fmt.Sprintf("buf<%s>[s:0x%x]", b.name, len(b.buf))
}

func (b *Buffer) check(off uint32, size int) {
	if size < 0 || uint64(off)+uint64(size) > uint64(len(b.buf)) {
		panic(&RangeError{Buffer: b.name, Offset: off, Size: size, Len: len(b.buf)})
	}
}

func (b *Buffer) grow(off uint32, size int) {
	b.dirty = true
	if end := int(off) + size; end > len(b.buf) {
		if end <= cap(b.buf) {
			b.buf = b.buf[:end]
		} else {
			nb := make([]byte, end, end+end/4)
			copy(nb, b.buf)
			b.buf = nb
		}
	}
}

func (b *Buffer) U8(off uint32) uint8 {
	b.check(off, 1)
	return b.buf[off]
}

func (b *Buffer) U16(off uint32) uint16 {
	b.check(off, 2)
	return binary.BigEndian.Uint16(b.buf[off:])
}

func (b *Buffer) U24(off uint32) uint32 {
	b.check(off, 3)
	return utils.Read24bitUint(binary.BigEndian, b.buf[off:])
}

func (b *Buffer) U32(off uint32) uint32 {
	b.check(off, 4)
	return binary.BigEndian.Uint32(b.buf[off:])
}

// Bytes returns copy of size bytes at off
func (b *Buffer) Bytes(off uint32, size int) []byte {
	b.check(off, size)
	r := make([]byte, size)
	copy(r, b.buf[off:])
	return r
}

// Slice returns view of underlying memory, valid until next write
func (b *Buffer) Slice(off uint32, size int) []byte {
	b.check(off, size)
	return b.buf[off : int(off)+size]
}

func (b *Buffer) SetU8(off uint32, v uint8) {
	b.grow(off, 1)
	b.buf[off] = v
}

func (b *Buffer) SetU16(off uint32, v uint16) {
	b.grow(off, 2)
	binary.BigEndian.PutUint16(b.buf[off:], v)
}

func (b *Buffer) SetU24(off uint32, v uint32) {
	b.grow(off, 3)
	utils.Write24bitUint(binary.BigEndian, b.buf[off:], v)
}

func (b *Buffer) SetU32(off uint32, v uint32) {
	b.grow(off, 4)
	binary.BigEndian.PutUint32(b.buf[off:], v)
}

func (b *Buffer) SetBytes(off uint32, data []byte) {
	b.grow(off, len(data))
	copy(b.buf[off:], data)
}

// Append writes data at the end of buffer and returns offset of it
func (b *Buffer) Append(data []byte) uint32 {
	off := uint32(len(b.buf))
	b.SetBytes(off, data)
	return off
}

// Align pads buffer with zeroes until its length is multiple of align
func (b *Buffer) Align(align int) {
	if n := utils.AlignUp(len(b.buf), align); n != len(b.buf) {
		b.SetBytes(uint32(len(b.buf)), make([]byte, n-len(b.buf)))
	}
}
