package scene

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	ACTOR_SIZE        = 0x20
	PILLAR_ACTOR_SIZE = 0x18

	OBJECT_KIND_MASK   = 0x07FF
	OBJECT_FLAGS_SHIFT = 11
)

type ActorVariant int

const (
	ACTOR_NORMAL ActorVariant = iota
	ACTOR_PILLAR
)

func (v ActorVariant) Size() int {
	if v == ACTOR_PILLAR {
		return PILLAR_ACTOR_SIZE
	}
	return ACTOR_SIZE
}

func (v ActorVariant) String() string {
	if v == ACTOR_PILLAR {
		return "pillar"
	}
	return "normal"
}

type Actor struct {
	Record
	Variant ActorVariant

	SpawnFlags  uint16
	StatusFlags uint16

	Position       mgl32.Vec3 // normal variant only
	PillarPosition [3]int16   // pillar variant only

	ExecFlags uint8  // top 5 bits of object field
	Kind      uint16 // low 11 bits of object field
	EventFlag uint16

	ExtraCondition uint32 // normal variant only, routine address or 0
	Vars           [4]uint16
}

func objectKind(object uint16) uint16 { return object & OBJECT_KIND_MASK }

func (a *Actor) Object() uint16 {
	return uint16(a.ExecFlags)<<OBJECT_FLAGS_SHIFT | a.Kind&OBJECT_KIND_MASK
}

func (a *Actor) setObject(object uint16) {
	a.Kind = object & OBJECT_KIND_MASK
	a.ExecFlags = uint8(object >> OBJECT_FLAGS_SHIFT)
}

func (a *Actor) Unmarshal(b []byte) {
	bo := binary.BigEndian
	a.SpawnFlags = bo.Uint16(b[0x00:])
	a.StatusFlags = bo.Uint16(b[0x02:])
	switch a.Variant {
	case ACTOR_PILLAR:
		for i := range a.PillarPosition {
			a.PillarPosition[i] = int16(bo.Uint16(b[0x04+i*2:]))
		}
		a.setObject(bo.Uint16(b[0x0A:]))
		a.EventFlag = bo.Uint16(b[0x0C:])
		for i := range a.Vars {
			a.Vars[i] = bo.Uint16(b[0x0E+i*2:])
		}
	default:
		for i := range a.Position {
			a.Position[i] = math.Float32frombits(bo.Uint32(b[0x04+i*4:]))
		}
		a.setObject(bo.Uint16(b[0x10:]))
		a.EventFlag = bo.Uint16(b[0x12:])
		a.ExtraCondition = bo.Uint32(b[0x14:])
		for i := range a.Vars {
			a.Vars[i] = bo.Uint16(b[0x18+i*2:])
		}
	}
}

func (a *Actor) Marshal() []byte {
	bo := binary.BigEndian
	b := make([]byte, a.Variant.Size())
	bo.PutUint16(b[0x00:], a.SpawnFlags)
	bo.PutUint16(b[0x02:], a.StatusFlags)
	switch a.Variant {
	case ACTOR_PILLAR:
		for i, v := range a.PillarPosition {
			bo.PutUint16(b[0x04+i*2:], uint16(v))
		}
		bo.PutUint16(b[0x0A:], a.Object())
		bo.PutUint16(b[0x0C:], a.EventFlag)
		for i, v := range a.Vars {
			bo.PutUint16(b[0x0E+i*2:], v)
		}
	default:
		for i, v := range a.Position {
			bo.PutUint32(b[0x04+i*4:], math.Float32bits(v))
		}
		bo.PutUint16(b[0x10:], a.Object())
		bo.PutUint16(b[0x12:], a.EventFlag)
		bo.PutUint32(b[0x14:], a.ExtraCondition)
		for i, v := range a.Vars {
			bo.PutUint16(b[0x18+i*2:], v)
		}
	}
	return b
}

// endOfList is terminating record of normal actor list
func endOfList(kind uint16) []byte {
	a := Actor{Kind: kind}
	return a.Marshal()
}

// marshalActors encodes not deleted actors, terminator is appended for normal lists
func marshalActors(actors []*Actor, variant ActorVariant, endKind uint16) ([]byte, int) {
	out := make([]byte, 0, (len(actors)+1)*variant.Size())
	count := 0
	for _, a := range actors {
		if a.Deleted {
			continue
		}
		a.Variant = variant
		out = append(out, a.Marshal()...)
		count++
	}
	if variant == ACTOR_NORMAL {
		out = append(out, endOfList(endKind)...)
	}
	return out, count
}
