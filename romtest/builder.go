package romtest

import (
	"encoding/binary"

	"github.com/mogaika/scene_patcher/config"
)

// Overlay is scene overlay under construction. Pointer fields are mapped addresses
// that will be stored into image tables, zero means absent.
type Overlay struct {
	ID     int
	Mapped uint32
	data   []byte

	Init, Proximity   uint32
	Rooms, Decoration uint32
	Pillars           uint32
	Breakable1        uint32
	Breakable3        uint32
	Doors             uint32
	LoadingZones      uint32
	Text              uint32

	Spawns [][]byte // spawn entrance records, stored in common segment
}

func (o *Overlay) Len() int { return len(o.data) }

// Put appends data aligned to 4 and returns mapped address of it
func (o *Overlay) Put(data []byte) uint32 {
	for len(o.data)%4 != 0 {
		o.data = append(o.data, 0)
	}
	off := len(o.data)
	o.data = append(o.data, data...)
	return o.Mapped + uint32(off)
}

// PutActors appends normal actor list terminated with end of list record
func (o *Overlay) PutActors(records ...[]byte) uint32 {
	var list []byte
	for _, r := range records {
		list = append(list, r...)
	}
	return o.Put(append(list, EndOfList()...))
}

// PutRooms appends room table, decoration marker points right after it
func (o *Overlay) PutRooms(lists ...uint32) {
	table := make([]byte, 0, len(lists)*4)
	for _, l := range lists {
		table = append(table, BE(l)...)
	}
	o.Rooms = o.Put(table)
	o.Decoration = o.Rooms + uint32(len(table))
}

// SetLoader writes lui/addiu pair loading addr at overlay offsets hi and lo
func (o *Overlay) SetLoader(pair config.InstructionPair, addr uint32) {
	binary.BigEndian.PutUint32(o.data[pair.Hi:], 0x3C040000|(addr+0x8000)>>16)
	binary.BigEndian.PutUint32(o.data[pair.Lo:], 0x24840000|addr&0xFFFF)
}

type Builder struct {
	Layout   *config.Layout
	overlays []*Overlay
	Files    [][]byte // decompressed archive files
}

func NewBuilder() *Builder {
	return &Builder{
		Layout:   Layout(),
		overlays: make([]*Overlay, SCENE_COUNT),
	}
}

// Scene returns overlay of scene id, creating it on first call
func (b *Builder) Scene(id int) *Overlay {
	if b.overlays[id] == nil {
		b.overlays[id] = &Overlay{
			ID:     id,
			Mapped: OVERLAY_MAPPED + uint32(id)*0x10000,
			data:   make([]byte, OVERLAY_CODE),
		}
	}
	return b.overlays[id]
}

func (b *Builder) CommonMapped(off uint32) uint32 {
	return off - b.Layout.CommonBase + b.Layout.CommonMapped
}

// Build lays out image: tables and spawn entrances in common segment,
// archive meta, overlays and after them archive files
func (b *Builder) Build() []byte {
	img := make([]byte, OVERLAY_AREA)
	bo := binary.BigEndian
	t := b.Layout.Tables
	put := func(table uint32, id int, v uint32) { bo.PutUint32(img[table+uint32(id)*4:], v) }

	spawn := uint32(SPAWN_AREA)
	for id := 0; id < SCENE_COUNT; id++ {
		put(t.SpawnEntrancePointers, id, b.CommonMapped(spawn))
		if o := b.overlays[id]; o != nil {
			for _, se := range o.Spawns {
				copy(img[spawn:], se)
				spawn += uint32(len(se))
			}
		}
		if tail := id - (SCENE_COUNT - 2); tail >= 0 {
			b.Layout.SpawnEntranceTailEnds[tail] = b.CommonMapped(spawn)
		}
	}

	for id, o := range b.overlays {
		if o == nil {
			continue
		}
		for len(img)%16 != 0 || len(img) < OVERLAY_AREA {
			img = append(img, 0)
		}
		for len(o.data)%16 != 0 {
			o.data = append(o.data, 0)
		}
		start := uint32(len(img))
		img = append(img, o.data...)

		entry := t.ActorListStarts + uint32(id)*0x10
		bo.PutUint32(img[entry:], o.Init)
		bo.PutUint32(img[entry+4:], o.Proximity)
		bo.PutUint32(img[entry+8:], o.Rooms)
		bo.PutUint32(img[entry+12:], o.Decoration)
		put(t.PillarPointers, id, o.Pillars)
		put(t.Breakable1Pointers, id, o.Breakable1)
		put(t.Breakable3Pointers, id, o.Breakable3)
		put(t.DoorPointers, id, o.Doors)
		put(t.LoadingZonePointers, id, o.LoadingZones)
		put(t.TextPointers, id, o.Text)

		ft := t.OverlayFileTable + uint32(id)*8
		mt := t.OverlayMappedTable + uint32(id)*8
		bo.PutUint32(img[ft:], start)
		bo.PutUint32(img[ft+4:], start+uint32(len(o.data)))
		bo.PutUint32(img[mt:], o.Mapped)
		bo.PutUint32(img[mt+4:], o.Mapped+uint32(len(o.data)))
	}

	sizes := uint32(ARCHIVE_META)
	marker := sizes + uint32(len(b.Files))*4 + b.Layout.SizeTableGap
	copy(img[marker:], b.Layout.ArchiveMarker)
	dir := marker + b.Layout.DirectoryOffset

	for len(img)%16 != 0 {
		img = append(img, 0)
	}
	for i, f := range b.Files {
		c := Container(f, b.Layout.ContainerFlags)
		start := uint32(len(img))
		img = append(img, c...)
		bo.PutUint32(img[sizes+uint32(i)*4:], uint32(len(f)))
		bo.PutUint32(img[dir+uint32(i)*8:], start)
		bo.PutUint32(img[dir+uint32(i)*8+4:], start+uint32(len(c)))
	}
	return img
}
