package toc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io/ioutil"

	"github.com/pkg/errors"
)

const (
	CONTAINER_HEADER_SIZE = 4
	CONTAINER_FLAGS_MASK  = 0xFF000000
	CONTAINER_LENGTH_MASK = 0x00FFFFFF
)

// Compress packs data into container:
// u32 header (flags | length of header+payload), zlib payload, zero pad to even size
func Compress(data []byte, flags uint32) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(make([]byte, CONTAINER_HEADER_SIZE))

	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, errors.Wrapf(err, "[toc] zlib writer")
	}
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Wrapf(err, "[toc] compressing")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrapf(err, "[toc] finishing compression")
	}

	length := buf.Len()
	if length > CONTAINER_LENGTH_MASK {
		return nil, errors.Errorf("[toc] compressed container too large: 0x%x", length)
	}
	if length%2 != 0 {
		buf.WriteByte(0)
	}

	out := buf.Bytes()
	binary.BigEndian.PutUint32(out, (flags&CONTAINER_FLAGS_MASK)|uint32(length))
	return out, nil
}

// Decompress unpacks container produced by Compress. Trailing padding is ignored.
func Decompress(raw []byte, flags uint32) ([]byte, error) {
	if len(raw) < CONTAINER_HEADER_SIZE {
		return nil, errors.Errorf("[toc] container too short: %d bytes", len(raw))
	}
	header := binary.BigEndian.Uint32(raw)
	if header&CONTAINER_FLAGS_MASK != flags&CONTAINER_FLAGS_MASK {
		return nil, errors.Errorf("[toc] unexpected container header 0x%.8x", header)
	}
	length := int(header & CONTAINER_LENGTH_MASK)
	if length < CONTAINER_HEADER_SIZE || length > len(raw) {
		return nil, errors.Errorf("[toc] container length 0x%x out of 0x%x bytes", length, len(raw))
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw[CONTAINER_HEADER_SIZE:length]))
	if err != nil {
		return nil, errors.Wrapf(err, "[toc] zlib reader")
	}
	defer zr.Close()

	data, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrapf(err, "[toc] decompressing")
	}
	return data, nil
}
