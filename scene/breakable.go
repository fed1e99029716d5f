package scene

import "encoding/binary"

const (
	BREAKABLE1_SIZE = 0x0C
	BREAKABLE3_SIZE = 0x0C
	DROP_ID_SIZE    = 2

	BREAKABLE3_MAX_DROPS = 0xFFFF
)

// Breakable1 drops single pickup after one hit
type Breakable1 struct {
	Record
	Appearance  uint16
	PickupID    uint16
	EventFlag   uint32
	PickupFlags uint16
}

func (b1 *Breakable1) Unmarshal(b []byte) {
	bo := binary.BigEndian
	b1.Appearance = bo.Uint16(b[0x00:])
	b1.PickupID = bo.Uint16(b[0x02:])
	b1.EventFlag = bo.Uint32(b[0x04:])
	b1.PickupFlags = bo.Uint16(b[0x08:])
}

func (b1 *Breakable1) Marshal() []byte {
	bo := binary.BigEndian
	b := make([]byte, BREAKABLE1_SIZE)
	bo.PutUint16(b[0x00:], b1.Appearance)
	bo.PutUint16(b[0x02:], b1.PickupID)
	bo.PutUint32(b[0x04:], b1.EventFlag)
	bo.PutUint16(b[0x08:], b1.PickupFlags)
	return b
}

// Breakable3 breaks after three hits and drops DropCount items
// taken from scene DropIDs starting at DropStart
type Breakable3 struct {
	Record
	Appearance uint16
	DropStart  int
	DropCount  int
	EventFlag  uint32 // flag of first drop, next drops use following flags
}

// ItemFlag is event flag of i drop
func (b3 *Breakable3) ItemFlag(i int) uint32 {
	return b3.EventFlag + uint32(i)
}

// unmarshal returns raw drop array pointer, DropStart is resolved later
func (b3 *Breakable3) unmarshal(b []byte) uint32 {
	bo := binary.BigEndian
	b3.Appearance = bo.Uint16(b[0x00:])
	b3.DropCount = int(bo.Uint16(b[0x02:]))
	b3.EventFlag = bo.Uint32(b[0x08:])
	return bo.Uint32(b[0x04:])
}

func (b3 *Breakable3) marshal(dropsPtr uint32) []byte {
	bo := binary.BigEndian
	b := make([]byte, BREAKABLE3_SIZE)
	bo.PutUint16(b[0x00:], b3.Appearance)
	bo.PutUint16(b[0x02:], uint16(b3.DropCount))
	bo.PutUint32(b[0x04:], dropsPtr)
	bo.PutUint32(b[0x08:], b3.EventFlag)
	return b
}

func marshalBreakables1(list []*Breakable1) ([]byte, int) {
	out := make([]byte, 0, len(list)*BREAKABLE1_SIZE)
	count := 0
	for _, b := range list {
		if !b.Deleted {
			out = append(out, b.Marshal()...)
			count++
		}
	}
	return out, count
}

func marshalDropIDs(ids []uint16) []byte {
	out := make([]byte, len(ids)*DROP_ID_SIZE)
	for i, id := range ids {
		binary.BigEndian.PutUint16(out[i*DROP_ID_SIZE:], id)
	}
	return out
}
