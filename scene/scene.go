package scene

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
)

const ACTOR_LIST_STARTS_ENTRY_SIZE = 0x10

type ListKind int

const (
	LIST_INIT ListKind = iota
	LIST_PROXIMITY
	LIST_PILLAR_ACTORS
	LIST_PILLARS
	LIST_BREAKABLES1
	LIST_SPECIAL_BREAKABLES1
	LIST_BREAKABLES3
	LIST_DOORS
	LIST_LOADING_ZONES
	LIST_TEXTS
	LIST_SPAWN_ENTRANCES
	LIST_ROOM // LIST_ROOM+n is room list n, use Room(n)
)

func Room(n int) ListKind { return LIST_ROOM + ListKind(n) }

var listKindNames = map[ListKind]string{
	LIST_INIT:                "init",
	LIST_PROXIMITY:           "proximity",
	LIST_PILLAR_ACTORS:       "pillar_actors",
	LIST_PILLARS:             "pillars",
	LIST_BREAKABLES1:         "breakables1",
	LIST_SPECIAL_BREAKABLES1: "special_breakables1",
	LIST_BREAKABLES3:         "breakables3",
	LIST_DOORS:               "doors",
	LIST_LOADING_ZONES:       "loading_zones",
	LIST_TEXTS:               "texts",
	LIST_SPAWN_ENTRANCES:     "spawn_entrances",
}

func (k ListKind) String() string {
	if k >= LIST_ROOM {
		return fmt.Sprintf("room%d", int(k-LIST_ROOM))
	}
	if name, ok := listKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind%d", int(k))
}

// ParseListKind is inverse of ListKind.String
func ParseListKind(s string) (ListKind, error) {
	for k, name := range listKindNames {
		if name == s {
			return k, nil
		}
	}
	var room int
	if _, err := fmt.Sscanf(s, "room%d", &room); err == nil && room >= 0 {
		return Room(room), nil
	}
	return 0, errors.Errorf("[scene] Unknown list kind %q", s)
}

// Env is image together with layout of it
type Env struct {
	Image  *rom.Buffer
	Layout *config.Layout
	Common rom.Region
}

func NewEnv(image *rom.Buffer, layout *config.Layout) *Env {
	return &Env{
		Image:  image,
		Layout: layout,
		Common: rom.Region{Name: "common", Mapped: layout.CommonMapped, Base: layout.CommonBase},
	}
}

func (e *Env) word(table uint32, id int) uint32 {
	return e.Image.U32(table + uint32(id)*4)
}

func (e *Env) setWord(table uint32, id int, v uint32) {
	e.Image.SetU32(table+uint32(id)*4, v)
}

func (e *Env) actorListEntry(id int) uint32 {
	return e.Layout.Tables.ActorListStarts + uint32(id)*ACTOR_LIST_STARTS_ENTRY_SIZE
}

// OverlayInfo is entry of overlay file and mapped tables
type OverlayInfo struct {
	FileStart, FileEnd     uint32
	MappedStart, MappedEnd uint32
}

func (e *Env) overlayInfo(id int) OverlayInfo {
	ft := e.Layout.Tables.OverlayFileTable + uint32(id)*8
	mt := e.Layout.Tables.OverlayMappedTable + uint32(id)*8
	return OverlayInfo{
		FileStart:   e.Image.U32(ft),
		FileEnd:     e.Image.U32(ft + 4),
		MappedStart: e.Image.U32(mt),
		MappedEnd:   e.Image.U32(mt + 4),
	}
}

func (e *Env) setOverlayInfo(id int, oi OverlayInfo) {
	ft := e.Layout.Tables.OverlayFileTable + uint32(id)*8
	mt := e.Layout.Tables.OverlayMappedTable + uint32(id)*8
	e.Image.SetU32(ft, oi.FileStart)
	e.Image.SetU32(ft+4, oi.FileEnd)
	e.Image.SetU32(mt, oi.MappedStart)
	e.Image.SetU32(mt+4, oi.MappedEnd)
}

// OverlayBounds returns file region spanned by all scene overlays
func (e *Env) OverlayBounds() (start, end uint32, ok bool) {
	for id := 0; id < e.Layout.SceneCount; id++ {
		oi := e.overlayInfo(id)
		if !oi.present() {
			continue
		}
		if !ok || oi.FileStart < start {
			start = oi.FileStart
		}
		if !ok || oi.FileEnd > end {
			end = oi.FileEnd
		}
		ok = true
	}
	return start, end, ok
}

// inCommon reports whether mapped address points into common segment of image
// and not into memory of some scene overlay
func (e *Env) inCommon(mapped uint32) bool {
	size := e.Image.Len() - int(e.Common.Base)
	if size <= 0 || !e.Common.Contains(mapped, size) {
		return false
	}
	for id := 0; id < e.Layout.SceneCount; id++ {
		oi := e.overlayInfo(id)
		if oi.present() && mapped >= oi.MappedStart && mapped < oi.MappedEnd {
			return false
		}
	}
	return true
}

func (oi OverlayInfo) present() bool {
	return oi.FileEnd > oi.FileStart
}

type slots struct {
	init, proximity   Slot
	rooms             []Slot
	roomTable         uint32
	pillarActors      Slot
	pillars           Slot
	breakables1       Slot
	specialBreakables Slot
	dropIDs           Slot
	breakables3       Slot
	doors             Slot
	loadingZones      Slot
	texts             Slot
	spawnEntrances    Slot

	// lists that have no pointer to be written back
	hasTexts         bool
	hasSpecialLoader bool
}

type Scene struct {
	ID      int
	Overlay *rom.Buffer `json:"-" yaml:"-"`
	Region  rom.Region
	Info    OverlayInfo

	Init      []*Actor
	Proximity []*Actor
	Rooms     [][]*Actor

	PillarActors []*Actor
	Pillars      []*Pillar

	Breakables1        []*Breakable1
	SpecialBreakables1 []*Breakable1
	Breakables3        []*Breakable3
	DropIDs            []uint16

	Doors          []*Door
	LoadingZones   []*LoadingZone
	Texts          []*TextEntry
	SpawnEntrances []*SpawnEntrance

	Highest HighestSeen

	slots slots
}

func (s *Scene) HasOverlay() bool { return s.Overlay != nil }

func (s *Scene) String() string {
	return fmt.Sprintf("scene<0x%.2x>", s.ID)
}

func (s *Scene) actorList(kind ListKind) (*[]*Actor, bool) {
	switch {
	case kind == LIST_INIT:
		return &s.Init, true
	case kind == LIST_PROXIMITY:
		return &s.Proximity, true
	case kind == LIST_PILLAR_ACTORS:
		return &s.PillarActors, true
	case kind >= LIST_ROOM && int(kind-LIST_ROOM) < len(s.Rooms):
		return &s.Rooms[kind-LIST_ROOM], true
	}
	return nil, false
}

// Entries returns entries of list including deleted ones, nil if scene has no such list
func (s *Scene) Entries(kind ListKind) []Entry {
	var result []Entry
	if actors, ok := s.actorList(kind); ok {
		for _, a := range *actors {
			result = append(result, a)
		}
		return result
	}
	switch kind {
	case LIST_PILLARS:
		for _, e := range s.Pillars {
			result = append(result, e)
		}
	case LIST_BREAKABLES1:
		for _, e := range s.Breakables1 {
			result = append(result, e)
		}
	case LIST_SPECIAL_BREAKABLES1:
		for _, e := range s.SpecialBreakables1 {
			result = append(result, e)
		}
	case LIST_BREAKABLES3:
		for _, e := range s.Breakables3 {
			result = append(result, e)
		}
	case LIST_DOORS:
		for _, e := range s.Doors {
			result = append(result, e)
		}
	case LIST_LOADING_ZONES:
		for _, e := range s.LoadingZones {
			result = append(result, e)
		}
	case LIST_TEXTS:
		for _, e := range s.Texts {
			result = append(result, e)
		}
	case LIST_SPAWN_ENTRANCES:
		for _, e := range s.SpawnEntrances {
			result = append(result, e)
		}
	}
	return result
}

func (s *Scene) Len(kind ListKind) int {
	return len(s.Entries(kind))
}

func (s *Scene) Get(kind ListKind, index int) (Entry, error) {
	entries := s.Entries(kind)
	if index < 0 || index >= len(entries) {
		return nil, errors.Errorf("[scene] %v %v index %d out of %d entries", s, kind, index, len(entries))
	}
	return entries[index], nil
}

func (s *Scene) Delete(kind ListKind, index int) error {
	e, err := s.Get(kind, index)
	if err != nil {
		return err
	}
	e.Meta().Delete()
	return nil
}

func (s *Scene) Append(kind ListKind, e Entry) error {
	wrongType := func() error {
		return errors.Errorf("[scene] %v cannot append %T to %v", s, e, kind)
	}

	if actors, ok := s.actorList(kind); ok {
		a, ok := e.(*Actor)
		if !ok {
			return wrongType()
		}
		variant := ACTOR_NORMAL
		if kind == LIST_PILLAR_ACTORS {
			variant = ACTOR_PILLAR
		}
		if a.Variant != variant {
			return errors.Errorf("[scene] %v cannot append %v actor to %v", s, a.Variant, kind)
		}
		*actors = append(*actors, a)
		return nil
	}

	ok := true
	switch kind {
	case LIST_PILLARS:
		var v *Pillar
		if v, ok = e.(*Pillar); ok {
			s.Pillars = append(s.Pillars, v)
		}
	case LIST_BREAKABLES1:
		var v *Breakable1
		if v, ok = e.(*Breakable1); ok {
			s.Breakables1 = append(s.Breakables1, v)
		}
	case LIST_SPECIAL_BREAKABLES1:
		if !s.slots.hasSpecialLoader {
			return errors.Errorf("[scene] %v has no loader of special breakables", s)
		}
		var v *Breakable1
		if v, ok = e.(*Breakable1); ok {
			s.SpecialBreakables1 = append(s.SpecialBreakables1, v)
		}
	case LIST_BREAKABLES3:
		var v *Breakable3
		if v, ok = e.(*Breakable3); ok {
			s.Breakables3 = append(s.Breakables3, v)
		}
	case LIST_DOORS:
		var v *Door
		if v, ok = e.(*Door); ok {
			s.Doors = append(s.Doors, v)
		}
	case LIST_LOADING_ZONES:
		var v *LoadingZone
		if v, ok = e.(*LoadingZone); ok {
			s.LoadingZones = append(s.LoadingZones, v)
		}
	case LIST_TEXTS:
		if !s.slots.hasTexts {
			return errors.Errorf("[scene] %v has no text pool pointer", s)
		}
		var v *TextEntry
		if v, ok = e.(*TextEntry); ok {
			s.Texts = append(s.Texts, v)
		}
	case LIST_SPAWN_ENTRANCES:
		var v *SpawnEntrance
		if v, ok = e.(*SpawnEntrance); ok {
			s.SpawnEntrances = append(s.SpawnEntrances, v)
		}
	default:
		return errors.Errorf("[scene] %v has no list %v", s, kind)
	}
	if !ok {
		return wrongType()
	}
	return nil
}

// InsertDropID appends drop to the end of drops of breakable,
// drops of breakables located after it are shifted
func (s *Scene) InsertDropID(breakable int, id uint16) error {
	if breakable < 0 || breakable >= len(s.Breakables3) {
		return errors.Errorf("[scene] %v breakable3 %d out of %d", s, breakable, len(s.Breakables3))
	}
	b := s.Breakables3[breakable]
	if b.DropCount >= BREAKABLE3_MAX_DROPS {
		return errors.Errorf("[scene] %v breakable3 %d already has %d drops", s, breakable, b.DropCount)
	}
	pos := b.DropStart + b.DropCount
	if pos > len(s.DropIDs) {
		return errors.Errorf("[scene] %v breakable3 %d drops [%d:%d] out of drop array %d",
			s, breakable, b.DropStart, pos, len(s.DropIDs))
	}

	s.DropIDs = append(s.DropIDs, 0)
	copy(s.DropIDs[pos+1:], s.DropIDs[pos:])
	s.DropIDs[pos] = id

	for i, other := range s.Breakables3 {
		if i != breakable && other.DropStart >= pos {
			other.DropStart++
		}
	}
	b.DropCount++
	return nil
}

// RemoveDropID removes drop i of breakable, drops located after it are shifted back
func (s *Scene) RemoveDropID(breakable int, i int) error {
	if breakable < 0 || breakable >= len(s.Breakables3) {
		return errors.Errorf("[scene] %v breakable3 %d out of %d", s, breakable, len(s.Breakables3))
	}
	b := s.Breakables3[breakable]
	if i < 0 || i >= b.DropCount {
		return errors.Errorf("[scene] %v breakable3 %d drop %d out of %d", s, breakable, i, b.DropCount)
	}
	pos := b.DropStart + i
	s.DropIDs = append(s.DropIDs[:pos], s.DropIDs[pos+1:]...)

	for j, other := range s.Breakables3 {
		if j != breakable && other.DropStart > pos {
			other.DropStart--
		}
	}
	b.DropCount--
	return nil
}

// Drops returns drop ids of breakable
func (s *Scene) Drops(b *Breakable3) []uint16 {
	if b.DropStart < 0 || b.DropStart+b.DropCount > len(s.DropIDs) {
		return nil
	}
	return s.DropIDs[b.DropStart : b.DropStart+b.DropCount]
}

// PillarSpawns returns actors spawned by pillar
func (s *Scene) PillarSpawns(p *Pillar) []*Actor {
	if p.ActorsStart < 0 || p.ActorsStart+p.ActorsCount > len(s.PillarActors) {
		return nil
	}
	return s.PillarActors[p.ActorsStart : p.ActorsStart+p.ActorsCount]
}
