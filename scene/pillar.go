package scene

import "encoding/binary"

const (
	PILLAR_SIZE       = 0x0C
	PILLAR_MAX_ACTORS = 0xFF
)

// Pillar spawns ActorsCount actors of scene PillarActors starting at ActorsStart
type Pillar struct {
	Record
	ActorsStart   int
	ActorsCount   int
	DissolveFlags uint8
	FacingAngle   uint16
	EventFlag     uint32
}

func (p *Pillar) unmarshal(b []byte) uint32 {
	bo := binary.BigEndian
	p.ActorsCount = int(b[0x04])
	p.DissolveFlags = b[0x05]
	p.FacingAngle = bo.Uint16(b[0x06:])
	p.EventFlag = bo.Uint32(b[0x08:])
	return bo.Uint32(b[0x00:])
}

func (p *Pillar) marshal(actorsPtr uint32, count int) []byte {
	bo := binary.BigEndian
	b := make([]byte, PILLAR_SIZE)
	bo.PutUint32(b[0x00:], actorsPtr)
	b[0x04] = uint8(count)
	b[0x05] = p.DissolveFlags
	bo.PutUint16(b[0x06:], p.FacingAngle)
	bo.PutUint32(b[0x08:], p.EventFlag)
	return b
}
