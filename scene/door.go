package scene

import "encoding/binary"

const DOOR_SIZE = 0x1C

type Door struct {
	Record
	Model     uint32
	Texture   uint8
	Palette   uint8
	Flags     uint16
	Condition uint32 // custom condition routine or 0
	EventFlag uint16
	ItemID    uint16 // item required to open

	FrontRoom uint8
	BackRoom  uint8

	// indexes in scene text pool
	LockedText   uint8
	UnlockedText uint8

	OpenSound   uint16
	CloseSound  uint16
	LockedSound uint16
	UnlockSound uint16
}

func (d *Door) Unmarshal(b []byte) {
	bo := binary.BigEndian
	d.Model = bo.Uint32(b[0x00:])
	d.Texture = b[0x04]
	d.Palette = b[0x05]
	d.Flags = bo.Uint16(b[0x06:])
	d.Condition = bo.Uint32(b[0x08:])
	d.EventFlag = bo.Uint16(b[0x0C:])
	d.ItemID = bo.Uint16(b[0x0E:])
	d.FrontRoom = b[0x10]
	d.BackRoom = b[0x11]
	d.LockedText = b[0x12]
	d.UnlockedText = b[0x13]
	d.OpenSound = bo.Uint16(b[0x14:])
	d.CloseSound = bo.Uint16(b[0x16:])
	d.LockedSound = bo.Uint16(b[0x18:])
	d.UnlockSound = bo.Uint16(b[0x1A:])
}

func (d *Door) Marshal() []byte {
	bo := binary.BigEndian
	b := make([]byte, DOOR_SIZE)
	bo.PutUint32(b[0x00:], d.Model)
	b[0x04] = d.Texture
	b[0x05] = d.Palette
	bo.PutUint16(b[0x06:], d.Flags)
	bo.PutUint32(b[0x08:], d.Condition)
	bo.PutUint16(b[0x0C:], d.EventFlag)
	bo.PutUint16(b[0x0E:], d.ItemID)
	b[0x10] = d.FrontRoom
	b[0x11] = d.BackRoom
	b[0x12] = d.LockedText
	b[0x13] = d.UnlockedText
	bo.PutUint16(b[0x14:], d.OpenSound)
	bo.PutUint16(b[0x16:], d.CloseSound)
	bo.PutUint16(b[0x18:], d.LockedSound)
	bo.PutUint16(b[0x1A:], d.UnlockSound)
	return b
}
