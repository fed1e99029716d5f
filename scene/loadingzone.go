package scene

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

const LOADING_ZONE_SIZE = 0x12

type LoadingZone struct {
	Record
	Heal     uint8 // nonzero restores health on use
	Scene    uint8
	Spawn    uint8
	Fade     uint8
	Cutscene uint16
	Min, Max [3]int16
}

// Contains reports whether point is inside of zone box, bounds included
func (lz *LoadingZone) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < float32(lz.Min[i]) || p[i] > float32(lz.Max[i]) {
			return false
		}
	}
	return true
}

func (lz *LoadingZone) Unmarshal(b []byte) {
	bo := binary.BigEndian
	lz.Heal = b[0x00]
	lz.Scene = b[0x01]
	lz.Spawn = b[0x02]
	lz.Fade = b[0x03]
	lz.Cutscene = bo.Uint16(b[0x04:])
	for i := 0; i < 3; i++ {
		lz.Min[i] = int16(bo.Uint16(b[0x06+i*2:]))
		lz.Max[i] = int16(bo.Uint16(b[0x0C+i*2:]))
	}
}

func (lz *LoadingZone) Marshal() []byte {
	bo := binary.BigEndian
	b := make([]byte, LOADING_ZONE_SIZE)
	b[0x00] = lz.Heal
	b[0x01] = lz.Scene
	b[0x02] = lz.Spawn
	b[0x03] = lz.Fade
	bo.PutUint16(b[0x04:], lz.Cutscene)
	for i := 0; i < 3; i++ {
		bo.PutUint16(b[0x06+i*2:], uint16(lz.Min[i]))
		bo.PutUint16(b[0x0C+i*2:], uint16(lz.Max[i]))
	}
	return b
}
