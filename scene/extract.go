package scene

import (
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
)

// ErrNoOverlay returned by Extract for scenes without registered overlay
var ErrNoOverlay = errors.New("[scene] scene has no overlay")

// Extract decodes scene id from image
func Extract(env *Env, id int) (s *Scene, err error) {
	defer rom.Catch(&err, "[scene] Extract 0x%.2x", id)

	if id < 0 || id >= env.Layout.SceneCount {
		return nil, errors.Errorf("[scene] id 0x%x out of scene count 0x%x", id, env.Layout.SceneCount)
	}

	info := env.overlayInfo(id)
	if !info.present() {
		return nil, ErrNoOverlay
	}

	name := fmt.Sprintf("overlay#%.2x", id)
	data := env.Image.Bytes(info.FileStart, int(info.FileEnd-info.FileStart))
	s = &Scene{
		ID:      id,
		Info:    info,
		Overlay: rom.NewBuffer(name, data),
		Region:  rom.Region{Name: name, Mapped: info.MappedStart},
		Highest: NoneSeen(),
	}
	s.slots.hasTexts = id < env.Layout.TextSceneCount
	_, s.slots.hasSpecialLoader = env.Layout.SpecialBreakable1[id]

	if err := s.extractActorLists(env); err != nil {
		return nil, err
	}

	kinds := env.Layout.ObjectKinds
	lists := append([][]*Actor{s.Init, s.Proximity}, s.Rooms...)
	s.Highest = ScanHighest(kinds, lists...)

	s.extractPillars(env)
	// pillars spawn regular objects too
	s.Highest.Merge(ScanHighest(kinds, s.PillarActors))

	s.extractBreakables1(env)
	if err := s.extractSpecialBreakables1(env); err != nil {
		return nil, err
	}
	s.extractBreakables3(env)
	s.extractDoors(env)
	s.extractLoadingZones(env)

	if s.slots.hasTexts {
		if err := s.extractTexts(env); err != nil {
			return nil, err
		}
	}

	s.extractSpawnEntrances(env)
	return s, nil
}

func (s *Scene) readActors(ptr uint32, endKind uint16) ([]*Actor, Slot) {
	actors := make([]*Actor, 0)
	for off := s.Region.ToOffset(ptr); ; off += ACTOR_SIZE {
		a := &Actor{Record: fromAddr(s.Region.ToMapped(off))}
		a.Unmarshal(s.Overlay.Slice(off, ACTOR_SIZE))
		if a.Kind == endKind {
			break
		}
		actors = append(actors, a)
	}
	return actors, Slot{Base: ptr, Count: len(actors), Present: true}
}

func (s *Scene) extractActorLists(env *Env) error {
	entry := env.actorListEntry(s.ID)
	initPtr := env.Image.U32(entry)
	proximityPtr := env.Image.U32(entry + 4)
	roomsPtr := env.Image.U32(entry + 8)
	decorPtr := env.Image.U32(entry + 12)
	endKind := env.Layout.ObjectKinds.EndOfList

	s.Init, s.Proximity = []*Actor{}, []*Actor{}
	if initPtr != 0 {
		s.Init, s.slots.init = s.readActors(initPtr, endKind)
	}
	if proximityPtr != 0 {
		s.Proximity, s.slots.proximity = s.readActors(proximityPtr, endKind)
	}

	if roomsPtr != 0 {
		if decorPtr < roomsPtr {
			return errors.Errorf("[scene] %v room table 0x%.8x ends before it starts (0x%.8x)", s, roomsPtr, decorPtr)
		}
		s.slots.roomTable = roomsPtr
		count := int(decorPtr-roomsPtr) / 4
		s.Rooms = make([][]*Actor, count)
		s.slots.rooms = make([]Slot, count)
		tableOff := s.Region.ToOffset(roomsPtr)
		for i := range s.Rooms {
			ptr := s.Overlay.U32(tableOff + uint32(i)*4)
			if ptr == 0 {
				s.Rooms[i] = []*Actor{}
				continue
			}
			s.Rooms[i], s.slots.rooms[i] = s.readActors(ptr, endKind)
		}
	}
	return nil
}

// arrayBounds is union of [ptr, ptr+count*stride) of entries that have count.
// Returns base address and number of elements.
func arrayBounds(ptrs []uint32, counts []int, stride int) (uint32, int, bool) {
	var lo, hi uint32
	found := false
	for i, ptr := range ptrs {
		if counts[i] == 0 {
			continue
		}
		end := ptr + uint32(counts[i]*stride)
		if !found || ptr < lo {
			lo = ptr
		}
		if !found || end > hi {
			hi = end
		}
		found = true
	}
	if !found {
		return 0, 0, false
	}
	return lo, int(hi-lo) / stride, true
}

func (s *Scene) extractPillars(env *Env) {
	s.Pillars = []*Pillar{}
	s.PillarActors = []*Actor{}
	if s.Highest.Pillar < 0 {
		return
	}
	ptr := env.word(env.Layout.Tables.PillarPointers, s.ID)
	count := s.Highest.Pillar + 1
	s.slots.pillars = Slot{Base: ptr, Count: count, Present: true}

	ptrs := make([]uint32, count)
	counts := make([]int, count)
	off := s.Region.ToOffset(ptr)
	for i := 0; i < count; i++ {
		p := &Pillar{Record: fromAddr(s.Region.ToMapped(off))}
		ptrs[i] = p.unmarshal(s.Overlay.Slice(off, PILLAR_SIZE))
		counts[i] = p.ActorsCount
		s.Pillars = append(s.Pillars, p)
		off += PILLAR_SIZE
	}

	base, n, ok := arrayBounds(ptrs, counts, PILLAR_ACTOR_SIZE)
	if !ok {
		return
	}
	for i, p := range s.Pillars {
		if counts[i] != 0 {
			p.ActorsStart = int(ptrs[i]-base) / PILLAR_ACTOR_SIZE
		}
	}
	s.slots.pillarActors = Slot{Base: base, Count: n, Present: true}
	off = s.Region.ToOffset(base)
	for i := 0; i < n; i++ {
		a := &Actor{Record: fromAddr(s.Region.ToMapped(off)), Variant: ACTOR_PILLAR}
		a.Unmarshal(s.Overlay.Slice(off, PILLAR_ACTOR_SIZE))
		s.PillarActors = append(s.PillarActors, a)
		off += PILLAR_ACTOR_SIZE
	}
}

func (s *Scene) readBreakables1(ptr uint32, count int) []*Breakable1 {
	list := make([]*Breakable1, 0, count)
	off := s.Region.ToOffset(ptr)
	for i := 0; i < count; i++ {
		b := &Breakable1{Record: fromAddr(s.Region.ToMapped(off))}
		b.Unmarshal(s.Overlay.Slice(off, BREAKABLE1_SIZE))
		list = append(list, b)
		off += BREAKABLE1_SIZE
	}
	return list
}

func (s *Scene) extractBreakables1(env *Env) {
	s.Breakables1 = []*Breakable1{}
	if s.Highest.Breakable1 < 0 {
		return
	}
	ptr := env.word(env.Layout.Tables.Breakable1Pointers, s.ID)
	count := s.Highest.Breakable1 + 1
	s.Breakables1 = s.readBreakables1(ptr, count)
	s.slots.breakables1 = Slot{Base: ptr, Count: count, Present: true}
}

// special breakables table address is not stored in data but loaded by code
// with lui/addiu pair, immediate is lower half of instruction
func (s *Scene) specialBreakablesAddr(pair config.InstructionPair) uint32 {
	hi := uint32(s.Overlay.U16(pair.Hi + 2))
	lo := s.Overlay.U16(pair.Lo + 2)
	return hi<<16 + uint32(int32(int16(lo)))
}

func (s *Scene) setSpecialBreakablesAddr(pair config.InstructionPair, addr uint32) {
	s.Overlay.SetU16(pair.Hi+2, uint16((addr+0x8000)>>16))
	s.Overlay.SetU16(pair.Lo+2, uint16(addr))
}

func (s *Scene) extractSpecialBreakables1(env *Env) error {
	s.SpecialBreakables1 = []*Breakable1{}
	if s.Highest.SpecialBreakable1 < 0 {
		return nil
	}
	pair, ok := env.Layout.SpecialBreakable1[s.ID]
	if !ok {
		return errors.Errorf("[scene] %v references special breakable %d without known table loader",
			s, s.Highest.SpecialBreakable1)
	}
	ptr := s.specialBreakablesAddr(pair)
	count := s.Highest.SpecialBreakable1 + 1
	s.SpecialBreakables1 = s.readBreakables1(ptr, count)
	s.slots.specialBreakables = Slot{Base: ptr, Count: count, Present: true}
	return nil
}

func (s *Scene) extractBreakables3(env *Env) {
	s.Breakables3 = []*Breakable3{}
	s.DropIDs = []uint16{}
	if s.Highest.Breakable3 < 0 {
		return
	}
	ptr := env.word(env.Layout.Tables.Breakable3Pointers, s.ID)
	count := s.Highest.Breakable3 + 1
	s.slots.breakables3 = Slot{Base: ptr, Count: count, Present: true}

	ptrs := make([]uint32, count)
	counts := make([]int, count)
	off := s.Region.ToOffset(ptr)
	for i := 0; i < count; i++ {
		b := &Breakable3{Record: fromAddr(s.Region.ToMapped(off))}
		ptrs[i] = b.unmarshal(s.Overlay.Slice(off, BREAKABLE3_SIZE))
		counts[i] = b.DropCount
		s.Breakables3 = append(s.Breakables3, b)
		off += BREAKABLE3_SIZE
	}

	base, n, ok := arrayBounds(ptrs, counts, DROP_ID_SIZE)
	if !ok {
		return
	}
	for i, b := range s.Breakables3 {
		if counts[i] != 0 {
			b.DropStart = int(ptrs[i]-base) / DROP_ID_SIZE
		}
	}
	s.slots.dropIDs = Slot{Base: base, Count: n, Present: true}
	off = s.Region.ToOffset(base)
	for i := 0; i < n; i++ {
		s.DropIDs = append(s.DropIDs, s.Overlay.U16(off))
		off += DROP_ID_SIZE
	}
}

func (s *Scene) extractDoors(env *Env) {
	s.Doors = []*Door{}
	if s.Highest.Door < 0 {
		return
	}
	ptr := env.word(env.Layout.Tables.DoorPointers, s.ID)
	count := s.Highest.Door + 1
	s.slots.doors = Slot{Base: ptr, Count: count, Present: true}
	off := s.Region.ToOffset(ptr)
	for i := 0; i < count; i++ {
		d := &Door{Record: fromAddr(s.Region.ToMapped(off))}
		d.Unmarshal(s.Overlay.Slice(off, DOOR_SIZE))
		s.Doors = append(s.Doors, d)
		off += DOOR_SIZE
	}
}

func (s *Scene) extractLoadingZones(env *Env) {
	s.LoadingZones = []*LoadingZone{}
	if s.Highest.LoadingZone < 0 {
		return
	}
	ptr := env.word(env.Layout.Tables.LoadingZonePointers, s.ID)
	count := s.Highest.LoadingZone + 1
	s.slots.loadingZones = Slot{Base: ptr, Count: count, Present: true}
	off := s.Region.ToOffset(ptr)
	for i := 0; i < count; i++ {
		lz := &LoadingZone{Record: fromAddr(s.Region.ToMapped(off))}
		lz.Unmarshal(s.Overlay.Slice(off, LOADING_ZONE_SIZE))
		s.LoadingZones = append(s.LoadingZones, lz)
		off += LOADING_ZONE_SIZE
	}
}

func (s *Scene) extractTexts(env *Env) error {
	s.Texts = []*TextEntry{}
	ptr := env.word(env.Layout.Tables.TextPointers, s.ID)
	if ptr == 0 {
		return nil
	}
	entries, size, err := readTextPool(s.Overlay, s.Region, ptr)
	if err != nil {
		return errors.Wrapf(err, "[scene] %v text pool", s)
	}
	s.Texts = entries
	s.slots.texts = Slot{Base: ptr, Count: len(entries), Size: size, Present: true}
	return nil
}

// spawnEntrancesEnd is start of entrances of next scene still stored in common segment,
// two last scenes have fixed ends
func (env *Env) spawnEntrancesEnd(id int, start uint32) uint32 {
	tails := env.Layout.SpawnEntranceTailEnds
	first := env.Layout.SceneCount - len(tails)
	if id >= first {
		return tails[id-first]
	}
	for next := id + 1; next < env.Layout.SceneCount; next++ {
		if ptr := env.word(env.Layout.Tables.SpawnEntrancePointers, next); ptr > start && env.inCommon(ptr) {
			return ptr
		}
	}
	for _, end := range tails {
		if end > start {
			return end
		}
	}
	return start
}

func (s *Scene) extractSpawnEntrances(env *Env) {
	s.SpawnEntrances = []*SpawnEntrance{}
	start := env.word(env.Layout.Tables.SpawnEntrancePointers, s.ID)
	if start == 0 {
		return
	}

	buf, region, common := env.Image, env.Common, true
	var limit uint32
	if s.Region.Contains(start, s.Overlay.Len()) {
		// moved to overlay, list is closed by end record
		buf, region, common = s.Overlay, s.Region, false
		limit = uint32(s.Overlay.Len()) - s.Region.ToOffset(start)
	} else {
		end := env.spawnEntrancesEnd(s.ID, start)
		if end <= start {
			return
		}
		if (end-start)%SPAWN_ENTRANCE_SIZE != 0 {
			log.Printf("[WARNING] [scene] %v spawn entrances span 0x%x is not multiple of record size", s, end-start)
		}
		limit = end - start
	}

	off := region.ToOffset(start)
	for left := limit; left >= SPAWN_ENTRANCE_SIZE; left -= SPAWN_ENTRANCE_SIZE {
		b := buf.Slice(off, SPAWN_ENTRANCE_SIZE)
		if isSpawnEntrancesEnd(b) {
			break
		}
		se := &SpawnEntrance{Record: fromAddr(region.ToMapped(off))}
		se.Unmarshal(b)
		s.SpawnEntrances = append(s.SpawnEntrances, se)
		off += SPAWN_ENTRANCE_SIZE
	}
	s.slots.spawnEntrances = Slot{Base: start, Count: len(s.SpawnEntrances), Present: true, Common: common}
}
