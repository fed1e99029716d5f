package scene

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/text"
)

type TextEntry struct {
	Record
	Text string

	// last string of pool closed by pool end only
	Unterminated bool `json:",omitempty" yaml:"unterminated,omitempty"`
}

// readTextPool walks pool two bytes at a time. Returns entries and encoded size of pool
// including terminators.
func readTextPool(overlay *rom.Buffer, region rom.Region, ptr uint32) ([]*TextEntry, int, error) {
	start := region.ToOffset(ptr)
	off := start
	strStart := off
	acc := make([]byte, 0, 64)
	entries := make([]*TextEntry, 0)

	flush := func() error {
		s, err := text.Decode(acc)
		if err != nil {
			return errors.Wrapf(err, "string at 0x%.8x", region.ToMapped(strStart))
		}
		entries = append(entries, &TextEntry{Record: fromAddr(region.ToMapped(strStart)), Text: s})
		acc = acc[:0]
		return nil
	}

	for {
		code := overlay.U16(off)
		off += 2
		switch code {
		case text.POOL_END:
			if len(acc) != 0 {
				if err := flush(); err != nil {
					return nil, 0, err
				}
				entries[len(entries)-1].Unterminated = true
			}
			return entries, int(off - start), nil
		case text.STRING_END:
			if err := flush(); err != nil {
				return nil, 0, err
			}
			strStart = off
		default:
			acc = append(acc, byte(code>>8), byte(code))
		}
	}
}

func marshalTextPool(entries []*TextEntry) ([]byte, int, error) {
	var term [2]byte
	out := make([]byte, 0, 256)
	last := -1
	for i, e := range entries {
		if !e.Deleted {
			last = i
		}
	}
	count := 0
	for i, e := range entries {
		if e.Deleted {
			continue
		}
		b, err := text.Encode(e.Text)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "text entry %d", i)
		}
		out = append(out, b...)
		// empty string cannot end without terminator, it would be lost
		if !(i == last && e.Unterminated && len(b) != 0) {
			binary.BigEndian.PutUint16(term[:], text.STRING_END)
			out = append(out, term[:]...)
		}
		count++
	}
	binary.BigEndian.PutUint16(term[:], text.POOL_END)
	out = append(out, term[:]...)
	return out, count, nil
}
