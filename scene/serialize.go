package scene

import (
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/rom"
)

// place writes list data into original slot if it still fits,
// otherwise appends it to overlay tail. Returns mapped address of list.
func (s *Scene) place(env *Env, slot Slot, data []byte, fits bool) (addr uint32, moved bool) {
	if fits {
		if slot.Common {
			env.Image.SetBytes(env.Common.ToOffset(slot.Base), data)
		} else {
			s.Overlay.SetBytes(s.Region.ToOffset(slot.Base), data)
		}
		return slot.Base, false
	}
	s.Overlay.Align(4)
	off := s.Overlay.Append(data)
	addr = s.Region.ToMapped(off)
	log.Printf("[scene] %v list of 0x%x bytes moved from 0x%.8x to 0x%.8x", s, len(data), slot.Base, addr)
	return addr, true
}

func (s *Scene) placeActors(env *Env, slot Slot, actors []*Actor) (uint32, bool, bool) {
	data, count := marshalActors(actors, ACTOR_NORMAL, env.Layout.ObjectKinds.EndOfList)
	if count == 0 && !slot.Present {
		return 0, false, false
	}
	addr, moved := s.place(env, slot, data, slot.fitsCount(count))
	return addr, moved, true
}

// Serialize writes every list of scene into its overlay, repoints relocated lists
// and stores overlay into image at offset given by allocator
func (s *Scene) Serialize(env *Env, alloc *rom.Allocator) (err error) {
	defer rom.Catch(&err, "[scene] Serialize %v", s)

	sl := &s.slots
	entry := env.actorListEntry(s.ID)

	if addr, moved, ok := s.placeActors(env, sl.init, s.Init); ok && moved {
		env.Image.SetU32(entry, addr)
	}
	if addr, moved, ok := s.placeActors(env, sl.proximity, s.Proximity); ok && moved {
		env.Image.SetU32(entry+4, addr)
	}
	for i, room := range s.Rooms {
		if addr, moved, ok := s.placeActors(env, sl.rooms[i], room); ok && moved {
			s.Overlay.SetU32(s.Region.ToOffset(sl.roomTable)+uint32(i)*4, addr)
		}
	}

	if err := s.serializePillars(env); err != nil {
		return err
	}

	if data, count := marshalBreakables1(s.Breakables1); count != 0 || sl.breakables1.Present {
		if addr, moved := s.place(env, sl.breakables1, data, sl.breakables1.fitsCount(count)); moved {
			env.setWord(env.Layout.Tables.Breakable1Pointers, s.ID, addr)
		}
	}
	if data, count := marshalBreakables1(s.SpecialBreakables1); count != 0 || sl.specialBreakables.Present {
		if addr, moved := s.place(env, sl.specialBreakables, data, sl.specialBreakables.fitsCount(count)); moved {
			pair, ok := env.Layout.SpecialBreakable1[s.ID]
			if !ok {
				return errors.Errorf("[scene] %v has no loader of special breakables, cannot move table", s)
			}
			s.setSpecialBreakablesAddr(pair, addr)
		}
	}

	if err := s.serializeBreakables3(env); err != nil {
		return err
	}

	if data, count := marshalDoors(s.Doors); count != 0 || sl.doors.Present {
		if addr, moved := s.place(env, sl.doors, data, sl.doors.fitsCount(count)); moved {
			env.setWord(env.Layout.Tables.DoorPointers, s.ID, addr)
		}
	}
	if data, count := marshalLoadingZones(s.LoadingZones); count != 0 || sl.loadingZones.Present {
		if addr, moved := s.place(env, sl.loadingZones, data, sl.loadingZones.fitsCount(count)); moved {
			env.setWord(env.Layout.Tables.LoadingZonePointers, s.ID, addr)
		}
	}

	data, count, err := marshalTextPool(s.Texts)
	if err != nil {
		return err
	}
	if sl.hasTexts && (count != 0 || sl.texts.Present) {
		if addr, moved := s.place(env, sl.texts, data, sl.texts.fitsSize(len(data))); moved {
			env.setWord(env.Layout.Tables.TextPointers, s.ID, addr)
		}
	}

	if data, count := marshalSpawnEntrances(s.SpawnEntrances); count != 0 || sl.spawnEntrances.Present {
		slot := sl.spawnEntrances
		fits := slot.fitsCount(count)
		if !fits || count < slot.Count {
			data = append(data, spawnEntrancesEndRecord()...)
		}
		if addr, moved := s.place(env, slot, data, fits); moved {
			// moved entrances live in overlay, old slot is closed
			// so list of previous scene does not run into it
			if slot.Common && slot.Count != 0 {
				env.Image.SetBytes(env.Common.ToOffset(slot.Base), spawnEntrancesEndRecord())
			}
			env.setWord(env.Layout.Tables.SpawnEntrancePointers, s.ID, addr)
		}
	}

	s.Overlay.Align(16)
	off := alloc.Allocate(s.Overlay.Len())
	env.Image.SetBytes(off, s.Overlay.Raw())

	s.Info.FileStart = off
	s.Info.FileEnd = off + uint32(s.Overlay.Len())
	s.Info.MappedEnd = s.Info.MappedStart + uint32(s.Overlay.Len())
	env.setOverlayInfo(s.ID, s.Info)
	return nil
}

// pillar actors are referenced by index ranges, so after deletions
// ranges are remapped to indexes in compacted array
func (s *Scene) serializePillars(env *Env) error {
	sl := &s.slots
	if len(s.Pillars) == 0 && !sl.pillars.Present {
		return nil
	}

	remap := make([]int, len(s.PillarActors)+1)
	kept := 0
	for i, a := range s.PillarActors {
		remap[i] = kept
		if !a.Deleted {
			kept++
		}
	}
	remap[len(s.PillarActors)] = kept

	var base uint32
	if len(s.PillarActors) != 0 || sl.pillarActors.Present {
		data, count := marshalActors(s.PillarActors, ACTOR_PILLAR, 0)
		if count != 0 || sl.pillarActors.Present {
			base, _ = s.place(env, sl.pillarActors, data, sl.pillarActors.fitsCount(count))
		}
	}

	data := make([]byte, 0, len(s.Pillars)*PILLAR_SIZE)
	count := 0
	for i, p := range s.Pillars {
		if p.Deleted {
			continue
		}
		start, end := clampRange(p.ActorsStart, p.ActorsCount, len(s.PillarActors))
		newStart, newEnd := remap[start], remap[end]
		if newEnd-newStart > PILLAR_MAX_ACTORS {
			return errors.Errorf("[scene] %v pillar %d spawns %d actors, limit is %d",
				s, i, newEnd-newStart, PILLAR_MAX_ACTORS)
		}
		ptr := uint32(0)
		if newEnd > newStart {
			ptr = base + uint32(newStart*PILLAR_ACTOR_SIZE)
		}
		data = append(data, p.marshal(ptr, newEnd-newStart)...)
		count++
	}
	if count == 0 && !sl.pillars.Present {
		return nil
	}
	if addr, moved := s.place(env, sl.pillars, data, sl.pillars.fitsCount(count)); moved {
		env.setWord(env.Layout.Tables.PillarPointers, s.ID, addr)
	}
	return nil
}

func clampRange(start, count, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > length {
		start = length
	}
	end := start + count
	if end > length {
		end = length
	}
	return start, end
}

// drop array goes first, breakables3 records need its final address
func (s *Scene) serializeBreakables3(env *Env) error {
	sl := &s.slots
	if len(s.Breakables3) == 0 && !sl.breakables3.Present {
		return nil
	}

	var base uint32
	if len(s.DropIDs) != 0 || sl.dropIDs.Present {
		base, _ = s.place(env, sl.dropIDs, marshalDropIDs(s.DropIDs), sl.dropIDs.fitsCount(len(s.DropIDs)))
	}

	data := make([]byte, 0, len(s.Breakables3)*BREAKABLE3_SIZE)
	count := 0
	for i, b := range s.Breakables3 {
		if b.Deleted {
			continue
		}
		if b.DropCount < 0 || b.DropCount > BREAKABLE3_MAX_DROPS {
			return errors.Errorf("[scene] %v breakable3 %d drop count %d out of [0:%d]",
				s, i, b.DropCount, BREAKABLE3_MAX_DROPS)
		}
		ptr := uint32(0)
		if b.DropCount != 0 {
			ptr = base + uint32(b.DropStart*DROP_ID_SIZE)
		}
		data = append(data, b.marshal(ptr)...)
		count++
	}
	if count == 0 && !sl.breakables3.Present {
		return nil
	}
	if addr, moved := s.place(env, sl.breakables3, data, sl.breakables3.fitsCount(count)); moved {
		env.setWord(env.Layout.Tables.Breakable3Pointers, s.ID, addr)
	}
	return nil
}

func marshalDoors(list []*Door) ([]byte, int) {
	out := make([]byte, 0, len(list)*DOOR_SIZE)
	count := 0
	for _, d := range list {
		if !d.Deleted {
			out = append(out, d.Marshal()...)
			count++
		}
	}
	return out, count
}

func marshalLoadingZones(list []*LoadingZone) ([]byte, int) {
	out := make([]byte, 0, len(list)*LOADING_ZONE_SIZE)
	count := 0
	for _, lz := range list {
		if !lz.Deleted {
			out = append(out, lz.Marshal()...)
			count++
		}
	}
	return out, count
}

func marshalSpawnEntrances(list []*SpawnEntrance) ([]byte, int) {
	out := make([]byte, 0, len(list)*SPAWN_ENTRANCE_SIZE)
	count := 0
	for _, se := range list {
		if !se.Deleted {
			out = append(out, se.Marshal()...)
			count++
		}
	}
	return out, count
}
