package scene

import (
	"bytes"
	"encoding/binary"
)

const (
	SPAWN_ENTRANCE_SIZE = 0x16

	// room of record that closes list cut short or moved to overlay
	SPAWN_ENTRANCE_END = 0xFFFF
)

// SpawnEntrance is player and camera placement used when scene is entered.
// Lists of them live in common segment.
type SpawnEntrance struct {
	Record
	Room   uint16
	Player [3]int16
	Facing int16
	Camera [3]int16
	LookAt [3]int16
}

func (se *SpawnEntrance) Unmarshal(b []byte) {
	bo := binary.BigEndian
	se.Room = bo.Uint16(b[0x00:])
	for i := 0; i < 3; i++ {
		se.Player[i] = int16(bo.Uint16(b[0x02+i*2:]))
		se.Camera[i] = int16(bo.Uint16(b[0x0A+i*2:]))
		se.LookAt[i] = int16(bo.Uint16(b[0x10+i*2:]))
	}
	se.Facing = int16(bo.Uint16(b[0x08:]))
}

func (se *SpawnEntrance) Marshal() []byte {
	bo := binary.BigEndian
	b := make([]byte, SPAWN_ENTRANCE_SIZE)
	bo.PutUint16(b[0x00:], se.Room)
	for i := 0; i < 3; i++ {
		bo.PutUint16(b[0x02+i*2:], uint16(se.Player[i]))
		bo.PutUint16(b[0x0A+i*2:], uint16(se.Camera[i]))
		bo.PutUint16(b[0x10+i*2:], uint16(se.LookAt[i]))
	}
	bo.PutUint16(b[0x08:], uint16(se.Facing))
	return b
}

func spawnEntrancesEndRecord() []byte {
	return bytes.Repeat([]byte{0xFF}, SPAWN_ENTRANCE_SIZE)
}

func isSpawnEntrancesEnd(b []byte) bool {
	return binary.BigEndian.Uint16(b) == SPAWN_ENTRANCE_END
}
