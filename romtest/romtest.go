// Package romtest builds small synthetic images for tests.
// It writes raw bytes itself so it can be used by any package test.
package romtest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mogaika/scene_patcher/config"
)

const (
	SCENE_COUNT      = 4
	TEXT_SCENE_COUNT = 3

	OVERLAY_MAPPED = 0x80100000 // mapped address of overlay of scene 0, next scenes follow by 0x10000
	OVERLAY_CODE   = 0x40       // reserved bytes at overlay start, special loader lives here

	SPAWN_AREA   = 0x1800
	ARCHIVE_META = 0x3000
	OVERLAY_AREA = 0x4000

	OBJ_PLAIN = 0x0010 // object kind without extended data

	END_OF_LIST = 0x07FF
)

// Layout used by synthetic images
func Layout() *config.Layout {
	l := config.DefaultLayout()
	l.SceneCount = SCENE_COUNT
	l.TextSceneCount = TEXT_SCENE_COUNT
	l.Tables = config.Tables{
		ActorListStarts:       0x1100,
		PillarPointers:        0x1140,
		Breakable1Pointers:    0x1150,
		Breakable3Pointers:    0x1160,
		DoorPointers:          0x1170,
		LoadingZonePointers:   0x1180,
		TextPointers:          0x1190,
		SpawnEntrancePointers: 0x11A0,
		OverlayFileTable:      0x11B0,
		OverlayMappedTable:    0x11D0,
	}
	l.SpecialBreakable1 = map[int]config.InstructionPair{
		1: {Hi: 0x10, Lo: 0x14},
	}
	return l
}

// BE encodes values big endian, supported are
// uint8, uint16, int16, uint32, float32 and []byte
func BE(values ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		switch vv := v.(type) {
		case []byte:
			buf.Write(vv)
		case float32:
			binary.Write(&buf, binary.BigEndian, math.Float32bits(vv))
		case uint8, uint16, int16, uint32:
			binary.Write(&buf, binary.BigEndian, vv)
		default:
			panic(fmt.Sprintf("romtest.BE: unsupported %T", v))
		}
	}
	return buf.Bytes()
}

func Actor(kind uint16, var1 uint16) []byte {
	return BE(uint16(0x0001), uint16(0x0002), float32(1.5), float32(-2), float32(300),
		kind, uint16(0x0100)+var1, uint32(0), var1, uint16(0xA), uint16(0xB), uint16(0xC))
}

func EndOfList() []byte {
	return BE(make([]byte, 0x10), uint16(END_OF_LIST), make([]byte, 0x0E))
}

func PillarActor(kind uint16, var1 uint16) []byte {
	return BE(uint16(0x0003), uint16(0x0004), int16(-10), int16(20), int16(30),
		kind, uint16(0x0200)+var1, var1, uint16(1), uint16(2), uint16(3), uint16(0))
}

func Breakable1(pickup uint16, flag uint32) []byte {
	return BE(uint16(0x0005), pickup, flag, uint16(0x0001), uint16(0))
}

func Breakable3(count uint16, drops uint32, flag uint32) []byte {
	return BE(uint16(0x0006), count, drops, flag)
}

func Pillar(actors uint32, count uint8, flag uint32) []byte {
	return BE(actors, count, uint8(0x01), uint16(0x4000), flag)
}

func Door(item uint16) []byte {
	return BE(uint32(0x80123450), uint8(1), uint8(2), uint16(3), uint32(0), uint16(0x0300)+item, item,
		uint8(0), uint8(1), uint8(0), uint8(1), uint16(10), uint16(11), uint16(12), uint16(13))
}

func LoadingZone(scene, spawn uint8) []byte {
	return BE(uint8(0), scene, spawn, uint8(2), uint16(0),
		int16(-100), int16(0), int16(-100), int16(100), int16(50), int16(100))
}

func SpawnEntrance(room uint16) []byte {
	return BE(room, int16(1), int16(2), int16(3), int16(0x400),
		int16(4), int16(5), int16(6), int16(7), int16(8), int16(9))
}

// TextPool encodes ascii strings into text pool
func TextPool(strs ...string) []byte {
	var buf bytes.Buffer
	for _, s := range strs {
		for _, c := range []byte(s) {
			buf.Write(BE(uint16(c)))
		}
		buf.Write(BE(uint16(0xFF00)))
	}
	buf.Write(BE(uint16(0xFFFF)))
	return buf.Bytes()
}

// Container wraps data in the archive container format
func Container(data []byte, flags uint32) []byte {
	var z bytes.Buffer
	w, _ := zlib.NewWriterLevel(&z, zlib.BestCompression)
	w.Write(data)
	w.Close()
	raw := BE(flags|uint32(4+z.Len()), z.Bytes())
	if len(raw)%2 != 0 {
		raw = append(raw, 0)
	}
	return raw
}
