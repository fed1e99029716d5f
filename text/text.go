// Package text implements game text encoding.
// Every character is stored as big-endian 16 bit code unit. Codes below 0x100
// are charmap bytes (see config.SetEncoding), other codes are control codes
// and are mapped into private use plane so they survive decode/encode cycle.
// Bytes charmap has no character for are kept in private use plane too.
package text

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/mogaika/scene_patcher/config"
)

const (
	STRING_END = 0xFF00
	POOL_END   = 0xFFFF

	controlPlane = 0xF0000
)

var ErrReservedCode = errors.New("[text] code is reserved for terminator")

type Encoding struct{}

var Game encoding.Encoding = Encoding{}

func (Encoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (Encoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

type decoder struct{ transform.NopResetter }

func (d *decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	cm := config.GetEncoding()
	var buf [utf8.UTFMax]byte
	for nSrc+1 < len(src) {
		code := binary.BigEndian.Uint16(src[nSrc:])
		var r rune
		if code < 0x100 && config.RoundTrips(cm, byte(code)) {
			r = cm.DecodeByte(byte(code))
		} else {
			r = controlPlane + rune(code)
		}
		n := utf8.EncodeRune(buf[:], r)
		if nDst+n > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		copy(dst[nDst:], buf[:n])
		nDst += n
		nSrc += 2
	}
	if nSrc < len(src) {
		if !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		return nDst, nSrc, errors.Errorf("[text] odd length of encoded text")
	}
	return nDst, nSrc, nil
}

type encoder struct{ transform.NopResetter }

func (e *encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	cm := config.GetEncoding()
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])

		var code uint16
		if r >= controlPlane && r <= controlPlane+0xFFFF {
			code = uint16(r - controlPlane)
			if code == STRING_END || code == POOL_END {
				return nDst, nSrc, ErrReservedCode
			}
		} else if b, ok := cm.EncodeRune(r); ok {
			code = uint16(b)
		} else {
			return nDst, nSrc, errors.Errorf("[text] rune %q cannot be encoded with %v", r, cm)
		}

		if nDst+2 > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		binary.BigEndian.PutUint16(dst[nDst:], code)
		nDst += 2
		nSrc += size
	}
	return nDst, nSrc, nil
}

func Decode(b []byte) (string, error) {
	s, _, err := transform.Bytes(Game.NewDecoder(), b)
	if err != nil {
		return "", errors.Wrapf(err, "[text] decode")
	}
	return string(s), nil
}

// Encode returns encoded string without terminator
func Encode(s string) ([]byte, error) {
	b, _, err := transform.Bytes(Game.NewEncoder(), []byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "[text] encode %q", s)
	}
	return b, nil
}

// Control returns string holding single control code
func Control(code uint16) string {
	return string(rune(controlPlane + rune(code)))
}
