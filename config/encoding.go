package config

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// glyph codes of game font, must decode to same ascii characters
const (
	glyphFirst = 0x20
	glyphLast  = 0x7E
)

var currentCharMap *charmap.Charmap = charmap.Windows1252

// SetEncoding selects charmap used for single byte characters of game text
func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				if err := ValidateEncoding(cm); err != nil {
					return err
				}
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

// ValidateEncoding checks that charmap keeps glyph codes of game font
func ValidateEncoding(cm *charmap.Charmap) error {
	for b := glyphFirst; b <= glyphLast; b++ {
		if r := cm.DecodeByte(byte(b)); r != rune(b) {
			return errors.Errorf("Encoding %v maps glyph 0x%.2x to %q, expected %q", cm, b, r, rune(b))
		}
	}
	return nil
}

// RoundTrips reports whether byte b of text survives decoding and encoding with cm.
// Bytes without character in charmap do not.
func RoundTrips(cm *charmap.Charmap, b byte) bool {
	r := cm.DecodeByte(b)
	if r == utf8.RuneError {
		return false
	}
	e, ok := cm.EncodeRune(r)
	return ok && e == b
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && ValidateEncoding(cm) == nil {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
