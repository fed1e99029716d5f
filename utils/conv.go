package utils

import "encoding/binary"

func AlignUp(size, align int) int {
	return (size + align - 1) / align * align
}

func Read24bitUint(o binary.ByteOrder, bin []byte) uint32 {
	var buf [4]byte
	if o == binary.LittleEndian {
		copy(buf[0:], bin[:3])
	} else {
		copy(buf[1:], bin[:3])
	}
	return o.Uint32(buf[:])
}

func Write24bitUint(o binary.ByteOrder, bin []byte, v uint32) {
	var buf [4]byte
	o.PutUint32(buf[:], v)
	if o == binary.LittleEndian {
		copy(bin[:3], buf[0:3])
	} else {
		copy(bin[:3], buf[1:4])
	}
}
