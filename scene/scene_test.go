package scene

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/romtest"
	"github.com/mogaika/scene_patcher/utils"
)

func cat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// fixture: scene 0 plain lists with door, text and spawns;
// scene 1 rooms with breakables, pillar and special loader; scene 2 without overlay;
// scene 3 loading zones
func fixture() *romtest.Builder {
	b := romtest.NewBuilder()
	kinds := b.Layout.ObjectKinds

	s0 := b.Scene(0)
	s0.Init = s0.PutActors(romtest.Actor(romtest.OBJ_PLAIN, 0), romtest.Actor(romtest.OBJ_PLAIN, 1))
	s0.Proximity = s0.PutActors(romtest.Actor(kinds.Door.Kind, 0))
	s0.Doors = s0.Put(romtest.Door(1))
	s0.Text = s0.Put(romtest.TextPool("Hello", "World"))
	s0.Spawns = [][]byte{romtest.SpawnEntrance(0), romtest.SpawnEntrance(1)}

	s1 := b.Scene(1)
	room0 := s1.PutActors(romtest.Actor(kinds.Breakable3.Kind, 1), romtest.Actor(kinds.Pillar.Kind, 0))
	room2 := s1.PutActors(romtest.Actor(kinds.Breakable1.Kind, 0))
	s1.PutRooms(room0, 0, room2)
	s1.Init = s1.PutActors()
	drops := s1.Put(romtest.BE(uint16(1), uint16(2), uint16(3), uint16(4),
		uint16(5), uint16(6), uint16(7), uint16(8)))
	s1.Breakable3 = s1.Put(cat(romtest.Breakable3(5, drops, 0x100), romtest.Breakable3(3, drops+10, 0x200)))
	pillarActors := s1.Put(cat(
		romtest.PillarActor(romtest.OBJ_PLAIN, 0),
		romtest.PillarActor(kinds.Breakable1.Kind, 1),
		romtest.PillarActor(kinds.SpecialBreakable1.Kind, 0)))
	s1.Pillars = s1.Put(romtest.Pillar(pillarActors, 3, 0x300))
	s1.Breakable1 = s1.Put(cat(romtest.Breakable1(0x10, 0x400), romtest.Breakable1(0x11, 0x401)))
	special := s1.Put(romtest.Breakable1(0x20, 0x500))
	s1.SetLoader(b.Layout.SpecialBreakable1[1], special)
	s1.Spawns = [][]byte{romtest.SpawnEntrance(2)}

	s3 := b.Scene(3)
	s3.Init = s3.PutActors(romtest.Actor(kinds.LoadingZone.Kind, 1))
	s3.LoadingZones = s3.Put(cat(romtest.LoadingZone(0, 1), romtest.LoadingZone(1, 0)))
	s3.Text = s3.Put(romtest.TextPool("ignored"))
	s3.Spawns = [][]byte{romtest.SpawnEntrance(3)}
	return b
}

func extractAll(t *testing.T, env *Env) []*Scene {
	scenes := make([]*Scene, env.Layout.SceneCount)
	for id := range scenes {
		s, err := Extract(env, id)
		if errors.Cause(err) == ErrNoOverlay {
			continue
		}
		if err != nil {
			t.Fatalf("Extract(%d): %v", id, err)
		}
		scenes[id] = s
	}
	return scenes
}

func load(t *testing.T) (*Env, []*Scene) {
	b := fixture()
	env := NewEnv(rom.NewBuffer("image", b.Build()), b.Layout)
	return env, extractAll(t, env)
}

func serializeAll(t *testing.T, env *Env, scenes []*Scene) []*Scene {
	start, end, ok := env.OverlayBounds()
	if !ok {
		t.Fatalf("no overlays")
	}
	alloc := rom.NewAllocator(start, end, uint32(env.Image.Len()))
	for _, s := range scenes {
		if s == nil {
			continue
		}
		if err := s.Serialize(env, alloc); err != nil {
			t.Fatalf("Serialize(%v): %v", s, err)
		}
	}
	return extractAll(t, env)
}

func TestExtract(t *testing.T) {
	env, scenes := load(t)
	if scenes[2] != nil {
		t.Errorf("scene 2 has no overlay, got %v", scenes[2])
	}

	s0 := scenes[0]
	if len(s0.Init) != 2 || len(s0.Proximity) != 1 || len(s0.Doors) != 1 || len(s0.SpawnEntrances) != 2 {
		t.Errorf("scene 0 counts init %d proximity %d doors %d spawns %d",
			len(s0.Init), len(s0.Proximity), len(s0.Doors), len(s0.SpawnEntrances))
	}
	if s0.Doors[0].ItemID != 1 || s0.Doors[0].CloseSound != 11 {
		t.Errorf("door decoded wrong: %s", utils.SDump(s0.Doors[0]))
	}
	if a := s0.Init[1]; a.Vars[0] != 1 || a.Position.Z() != 300 || a.EventFlag != 0x101 {
		t.Errorf("actor decoded wrong: %s", utils.SDump(a))
	}
	if addr, ok := s0.Init[0].OriginAddr(); !ok || addr != romtest.OVERLAY_MAPPED+romtest.OVERLAY_CODE {
		t.Errorf("init origin 0x%x", addr)
	}
	var texts []string
	for _, e := range s0.Texts {
		texts = append(texts, e.Text)
	}
	if !reflect.DeepEqual(texts, []string{"Hello", "World"}) {
		t.Errorf("texts %q", texts)
	}
	if s0.slots.texts.Size != 26 {
		t.Errorf("text pool size %d; expected 26", s0.slots.texts.Size)
	}

	s1 := scenes[1]
	if len(s1.Rooms) != 3 || len(s1.Rooms[0]) != 2 || len(s1.Rooms[1]) != 0 || len(s1.Rooms[2]) != 1 {
		t.Errorf("scene 1 rooms %s", utils.SDump(s1.Rooms))
	}
	if len(s1.Pillars) != 1 || len(s1.PillarActors) != 3 || s1.PillarActors[1].PillarPosition[0] != -10 {
		t.Errorf("scene 1 pillars %s", utils.SDump(s1.Pillars, s1.PillarActors))
	}
	if len(s1.Breakables1) != 2 || len(s1.SpecialBreakables1) != 1 || s1.SpecialBreakables1[0].PickupID != 0x20 {
		t.Errorf("scene 1 breakables1 %s", utils.SDump(s1.Breakables1, s1.SpecialBreakables1))
	}
	if len(s1.DropIDs) != 8 || s1.Breakables3[0].DropStart != 0 || s1.Breakables3[1].DropStart != 5 {
		t.Errorf("scene 1 drops %v, breakables3 %s", s1.DropIDs, utils.SDump(s1.Breakables3))
	}
	if d := s1.Drops(s1.Breakables3[1]); !reflect.DeepEqual(d, []uint16{6, 7, 8}) {
		t.Errorf("drops of second breakable %v", d)
	}
	if f := s1.Breakables3[1].ItemFlag(2); f != 0x202 {
		t.Errorf("ItemFlag(2)=0x%x; expected 0x202", f)
	}

	s3 := scenes[3]
	if len(s3.LoadingZones) != 2 || s3.LoadingZones[1].Scene != 1 {
		t.Errorf("scene 3 loading zones %s", utils.SDump(s3.LoadingZones))
	}
	if len(s3.Texts) != 0 {
		t.Errorf("scene 3 is out of text scenes, got %d texts", len(s3.Texts))
	}
	if len(s3.SpawnEntrances) != 1 || s3.SpawnEntrances[0].Room != 3 {
		t.Errorf("scene 3 spawns %s", utils.SDump(s3.SpawnEntrances))
	}
	if env.Common.ToOffset(*s3.SpawnEntrances[0].Origin) != romtest.SPAWN_AREA+3*SPAWN_ENTRANCE_SIZE {
		t.Errorf("scene 3 spawn origin 0x%x", *s3.SpawnEntrances[0].Origin)
	}
}

func TestScanHighest(t *testing.T) {
	kinds := romtest.Layout().ObjectKinds
	actor := func(kind, v uint16) *Actor { return &Actor{Kind: kind, Vars: [4]uint16{v}} }

	h := ScanHighest(kinds,
		[]*Actor{actor(kinds.Door.Kind, 2), actor(romtest.OBJ_PLAIN, 9)},
		[]*Actor{actor(kinds.Door.Kind, 5), actor(kinds.Door.Kind, 1), actor(kinds.Pillar.Kind, 0)})
	expected := NoneSeen()
	expected.Door = 5
	expected.Pillar = 0
	if h != expected {
		t.Errorf("ScanHighest=%+v; expected %+v", h, expected)
	}

	h.Merge(HighestSeen{Breakable1: 3, SpecialBreakable1: -1, Breakable3: -1, Pillar: -1, Door: 7, LoadingZone: -1})
	if h.Breakable1 != 3 || h.Door != 7 || h.Pillar != 0 {
		t.Errorf("Merge result %+v", h)
	}
}

func TestSpecialLoaderImmediates(t *testing.T) {
	pair := romtest.Layout().SpecialBreakable1[1]
	s := &Scene{Overlay: rom.NewBuffer("code", make([]byte, 0x20))}
	for _, addr := range []uint32{0x80112340, 0x8011A000, 0x80118000, 0x8011FFFC} {
		s.setSpecialBreakablesAddr(pair, addr)
		if got := s.specialBreakablesAddr(pair); got != addr {
			t.Errorf("loader of 0x%x reads back 0x%x", addr, got)
		}
	}
	s.setSpecialBreakablesAddr(pair, 0x8011A000)
	if hi, lo := s.Overlay.U16(pair.Hi+2), s.Overlay.U16(pair.Lo+2); hi != 0x8012 || lo != 0xA000 {
		t.Errorf("immediates 0x%x 0x%x; expected 0x8012 0xa000", hi, lo)
	}
}

func TestRoundTrip(t *testing.T) {
	env, scenes := load(t)
	again := serializeAll(t, env, scenes)

	for id, s := range scenes {
		r := again[id]
		if (s == nil) != (r == nil) {
			t.Fatalf("scene %d presence changed", id)
		}
		if s == nil {
			continue
		}
		for _, c := range []struct {
			name     string
			was, now interface{}
		}{
			{"init", s.Init, r.Init},
			{"proximity", s.Proximity, r.Proximity},
			{"rooms", s.Rooms, r.Rooms},
			{"pillars", s.Pillars, r.Pillars},
			{"pillar actors", s.PillarActors, r.PillarActors},
			{"breakables1", s.Breakables1, r.Breakables1},
			{"special breakables1", s.SpecialBreakables1, r.SpecialBreakables1},
			{"breakables3", s.Breakables3, r.Breakables3},
			{"drops", s.DropIDs, r.DropIDs},
			{"doors", s.Doors, r.Doors},
			{"loading zones", s.LoadingZones, r.LoadingZones},
			{"texts", s.Texts, r.Texts},
			{"spawns", s.SpawnEntrances, r.SpawnEntrances},
		} {
			if !reflect.DeepEqual(c.was, c.now) {
				t.Errorf("scene %d %s changed:\n%s\n%s", id, c.name, utils.SDump(c.was), utils.SDump(c.now))
			}
		}
		if r.Info.MappedStart != s.Info.MappedStart || r.Info.FileEnd-r.Info.FileStart != r.Info.MappedEnd-r.Info.MappedStart {
			t.Errorf("scene %d overlay info %+v", id, r.Info)
		}
	}
}

func TestShrinkWritesInPlace(t *testing.T) {
	env, scenes := load(t)
	s0 := scenes[0]
	initBase := s0.slots.init.Base
	if err := s0.Delete(LIST_INIT, 0); err != nil {
		t.Fatal(err)
	}
	s0.Texts[1].Text = "Hi"

	again := serializeAll(t, env, scenes)
	r := again[0]
	if r.slots.init.Base != initBase {
		t.Errorf("init list moved from 0x%x to 0x%x", initBase, r.slots.init.Base)
	}
	if len(r.Init) != 1 || r.Init[0].Vars[0] != 1 {
		t.Errorf("init after delete %s", utils.SDump(r.Init))
	}
	if r.slots.texts.Base != s0.slots.texts.Base || r.Texts[1].Text != "Hi" {
		t.Errorf("text pool at 0x%x %q; expected in place", r.slots.texts.Base, r.Texts[1].Text)
	}
}

func TestGrowthRelocates(t *testing.T) {
	env, scenes := load(t)
	s0 := scenes[0]
	origLen := s0.Overlay.Len()
	initBase := s0.slots.init.Base
	textBase := s0.slots.texts.Base

	added := &Actor{Kind: romtest.OBJ_PLAIN, Vars: [4]uint16{7}}
	if err := s0.Append(LIST_INIT, added); err != nil {
		t.Fatal(err)
	}
	s0.Texts[0].Text = "Hello, wide world"

	again := serializeAll(t, env, scenes)
	r := again[0]
	entry := env.actorListEntry(0)
	if ptr := env.Image.U32(entry); ptr != r.slots.init.Base || ptr <= initBase {
		t.Errorf("init pointer 0x%x, list at 0x%x; original 0x%x", ptr, r.slots.init.Base, initBase)
	}
	if !r.Region.Contains(r.slots.init.Base, r.Overlay.Len()) || r.Region.ToOffset(r.slots.init.Base) < uint32(origLen) {
		t.Errorf("init moved to 0x%x, not to overlay tail", r.slots.init.Base)
	}
	if len(r.Init) != 3 || r.Init[2].Vars[0] != 7 {
		t.Errorf("init after append %s", utils.SDump(r.Init))
	}
	if env.word(env.Layout.Tables.TextPointers, 0) == textBase || r.Texts[0].Text != "Hello, wide world" {
		t.Errorf("text pool not relocated: %s", utils.SDump(r.Texts))
	}
	if r.Overlay.Len()%16 != 0 || r.Info.FileEnd-r.Info.FileStart != uint32(r.Overlay.Len()) {
		t.Errorf("overlay len 0x%x, info %+v", r.Overlay.Len(), r.Info)
	}
	if r.Info.MappedEnd != r.Info.MappedStart+uint32(r.Overlay.Len()) {
		t.Errorf("mapped end 0x%x not updated", r.Info.MappedEnd)
	}
	// neighbour scenes keep their data after scene 0 has grown
	if len(again[1].Breakables3) != 2 || len(again[3].LoadingZones) != 2 {
		t.Errorf("other scenes corrupted")
	}
}

func TestDropArrayShift(t *testing.T) {
	env, scenes := load(t)
	s1 := scenes[1]
	oldBase := s1.slots.dropIDs.Base
	tableBase := s1.slots.breakables3.Base

	if err := s1.InsertDropID(0, 99); err != nil {
		t.Fatal(err)
	}
	if s1.Breakables3[0].DropCount != 6 || s1.Breakables3[1].DropStart != 6 {
		t.Fatalf("insert did not shift ranges %s", utils.SDump(s1.Breakables3))
	}

	again := serializeAll(t, env, scenes)
	r := again[1]
	newBase := r.slots.dropIDs.Base
	if newBase <= oldBase {
		t.Errorf("drop array at 0x%x; expected relocation past 0x%x", newBase, oldBase)
	}
	if r.slots.breakables3.Base != tableBase {
		t.Errorf("breakables3 table moved from 0x%x to 0x%x", tableBase, r.slots.breakables3.Base)
	}
	expected := []uint16{1, 2, 3, 4, 5, 99, 6, 7, 8}
	if !reflect.DeepEqual(r.DropIDs, expected) {
		t.Errorf("drops %v; expected %v", r.DropIDs, expected)
	}
	for i, exp := range []uint32{newBase, newBase + 6*DROP_ID_SIZE} {
		rec := r.Region.ToOffset(tableBase) + uint32(i*BREAKABLE3_SIZE)
		if ptr := r.Overlay.U32(rec + 4); ptr != exp {
			t.Errorf("breakable3 %d drops pointer 0x%x; expected 0x%x", i, ptr, exp)
		}
	}
}

func TestPillarArrayShift(t *testing.T) {
	env, scenes := load(t)
	s1 := scenes[1]
	oldPtr := s1.slots.pillarActors.Base

	if err := s1.Append(LIST_PILLAR_ACTORS, &Actor{Variant: ACTOR_PILLAR, Kind: romtest.OBJ_PLAIN}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Append(LIST_PILLAR_ACTORS, &Actor{Kind: romtest.OBJ_PLAIN}); err == nil {
		t.Errorf("normal actor accepted into pillar actors")
	}

	again := serializeAll(t, env, scenes)
	r := again[1]
	delta := r.slots.pillarActors.Base - oldPtr
	if delta == 0 {
		t.Fatalf("pillar actors not relocated")
	}
	rec := r.Region.ToOffset(r.slots.pillars.Base)
	if ptr := r.Overlay.U32(rec); ptr != oldPtr+delta {
		t.Errorf("pillar actors pointer 0x%x; expected 0x%x", ptr, oldPtr+delta)
	}
	// appended actor is not referenced by pillar, so it is not part of extracted array
	if len(r.PillarActors) != 3 {
		t.Errorf("pillar actors %d; expected 3", len(r.PillarActors))
	}
}

func TestPillarActorDeleteRemaps(t *testing.T) {
	env, scenes := load(t)
	s1 := scenes[1]
	if err := s1.Delete(LIST_PILLAR_ACTORS, 0); err != nil {
		t.Fatal(err)
	}
	again := serializeAll(t, env, scenes)
	r := again[1]
	if len(r.PillarActors) != 2 || r.Pillars[0].ActorsCount != 2 || r.PillarActors[0].Kind != env.Layout.ObjectKinds.Breakable1.Kind {
		t.Errorf("pillar after delete %s", utils.SDump(r.Pillars, r.PillarActors))
	}
}

func TestSpecialBreakablesRelocation(t *testing.T) {
	env, scenes := load(t)
	s1 := scenes[1]
	old := s1.slots.specialBreakables.Base
	if err := s1.Append(LIST_SPECIAL_BREAKABLES1, &Breakable1{PickupID: 0x21}); err != nil {
		t.Fatal(err)
	}
	again := serializeAll(t, env, scenes)
	r := again[1]
	addr := r.specialBreakablesAddr(env.Layout.SpecialBreakable1[1])
	if addr == old || addr != r.slots.specialBreakables.Base {
		t.Fatalf("loader points to 0x%x; old table 0x%x", addr, old)
	}
	list := r.readBreakables1(addr, 2)
	if list[0].PickupID != 0x20 || list[1].PickupID != 0x21 {
		t.Errorf("relocated special breakables %s", utils.SDump(list))
	}
}

func spawnRooms(s *Scene) []uint16 {
	rooms := []uint16{}
	for _, se := range s.SpawnEntrances {
		rooms = append(rooms, se.Room)
	}
	return rooms
}

func TestSpawnEntrancesResize(t *testing.T) {
	for _, c := range []struct {
		name     string
		grow     []int
		del      []int
		expected map[int][]uint16
		moved    map[int]bool
	}{
		{"none", nil, nil,
			map[int][]uint16{0: {0, 1}, 1: {2}, 3: {3}}, nil},
		{"grow first", []int{0}, nil,
			map[int][]uint16{0: {0, 1, 9}, 1: {2}, 3: {3}}, map[int]bool{0: true}},
		{"grow second", []int{1}, nil,
			map[int][]uint16{0: {0, 1}, 1: {2, 9}, 3: {3}}, map[int]bool{1: true}},
		{"grow both", []int{0, 1}, nil,
			map[int][]uint16{0: {0, 1, 9}, 1: {2, 9}, 3: {3}}, map[int]bool{0: true, 1: true}},
		{"grow tail", []int{3}, nil,
			map[int][]uint16{0: {0, 1}, 1: {2}, 3: {3, 9}}, map[int]bool{3: true}},
		{"shrink first", nil, []int{0},
			map[int][]uint16{0: {1}, 1: {2}, 3: {3}}, nil},
		{"shrink second, grow first", []int{0}, []int{1},
			map[int][]uint16{0: {0, 1, 9}, 1: {}, 3: {3}}, map[int]bool{0: true}},
	} {
		env, scenes := load(t)
		for _, id := range c.grow {
			if err := scenes[id].Append(LIST_SPAWN_ENTRANCES, &SpawnEntrance{Room: 9}); err != nil {
				t.Fatal(err)
			}
		}
		for _, id := range c.del {
			if err := scenes[id].Delete(LIST_SPAWN_ENTRANCES, 0); err != nil {
				t.Fatal(err)
			}
		}

		again := serializeAll(t, env, scenes)
		for id, expected := range c.expected {
			r := again[id]
			if rooms := spawnRooms(r); !reflect.DeepEqual(rooms, expected) {
				t.Errorf("%s: scene %d spawn rooms %v; expected %v", c.name, id, rooms, expected)
			}
			ptr := env.word(env.Layout.Tables.SpawnEntrancePointers, id)
			inOverlay := r.Region.Contains(ptr, r.Overlay.Len())
			if inOverlay != c.moved[id] || inOverlay == env.inCommon(ptr) {
				t.Errorf("%s: scene %d spawn pointer 0x%x in overlay %v", c.name, id, ptr, inOverlay)
			}
		}

		// list already moved to overlay stays in place
		twice := serializeAll(t, env, again)
		for id, expected := range c.expected {
			if rooms := spawnRooms(twice[id]); !reflect.DeepEqual(rooms, expected) {
				t.Errorf("%s: second pass scene %d spawn rooms %v; expected %v", c.name, id, rooms, expected)
			}
			if twice[id].slots.spawnEntrances.Base != again[id].slots.spawnEntrances.Base {
				t.Errorf("%s: second pass moved spawns of scene %d", c.name, id)
			}
		}
	}
}

func TestAppendRejectsUnreachable(t *testing.T) {
	_, scenes := load(t)
	if err := scenes[3].Append(LIST_TEXTS, &TextEntry{Text: "lost"}); err == nil {
		t.Errorf("text appended to scene without text pool pointer")
	}
	if len(scenes[3].Texts) != 0 {
		t.Errorf("scene 3 texts %d", len(scenes[3].Texts))
	}
	if err := scenes[0].Append(LIST_SPECIAL_BREAKABLES1, &Breakable1{}); err == nil {
		t.Errorf("special breakable appended to scene without loader")
	}
	if err := scenes[0].Append(LIST_TEXTS, &TextEntry{Text: "kept"}); err != nil {
		t.Errorf("text append to scene 0: %v", err)
	}
	if err := scenes[1].Append(LIST_SPECIAL_BREAKABLES1, &Breakable1{}); err != nil {
		t.Errorf("special breakable append to scene 1: %v", err)
	}
}

func serializeOne(env *Env, s *Scene) error {
	start, end, _ := env.OverlayBounds()
	return s.Serialize(env, rom.NewAllocator(start, end, uint32(env.Image.Len())))
}

func TestSerializeRejects(t *testing.T) {
	for _, c := range []struct {
		name   string
		mutate func(env *Env, s *Scene)
	}{
		{"drop count", func(env *Env, s *Scene) {
			s.Breakables3[1].DropCount = 0x10000
		}},
		{"negative drop count", func(env *Env, s *Scene) {
			s.Breakables3[0].DropCount = -1
		}},
		{"pillar actors", func(env *Env, s *Scene) {
			for i := 0; i < PILLAR_MAX_ACTORS; i++ {
				s.PillarActors = append(s.PillarActors, &Actor{Variant: ACTOR_PILLAR, Kind: romtest.OBJ_PLAIN})
			}
			s.Pillars[0].ActorsCount = len(s.PillarActors)
		}},
		{"moved special breakables without loader", func(env *Env, s *Scene) {
			s.SpecialBreakables1 = append(s.SpecialBreakables1, &Breakable1{})
			delete(env.Layout.SpecialBreakable1, s.ID)
		}},
	} {
		env, scenes := load(t)
		s := scenes[1]
		c.mutate(env, s)
		if err := serializeOne(env, s); err == nil {
			t.Errorf("%s: expected Serialize error", c.name)
		}
	}

	// largest pillar still fits
	env, scenes := load(t)
	s := scenes[1]
	for len(s.PillarActors) < PILLAR_MAX_ACTORS {
		s.PillarActors = append(s.PillarActors, &Actor{Variant: ACTOR_PILLAR, Kind: romtest.OBJ_PLAIN})
	}
	s.Pillars[0].ActorsCount = len(s.PillarActors)
	if err := serializeOne(env, s); err != nil {
		t.Errorf("pillar of %d actors: %v", PILLAR_MAX_ACTORS, err)
	}
}

func TestMarshalActorsSentinel(t *testing.T) {
	actors := []*Actor{{Kind: 1}, {Kind: 2, Record: Record{Deleted: true}}, {Kind: 3}}
	normal, n := marshalActors(actors, ACTOR_NORMAL, romtest.END_OF_LIST)
	if n != 2 || len(normal) != 3*ACTOR_SIZE {
		t.Fatalf("normal list %d records in %d bytes", n, len(normal))
	}
	var end Actor
	end.Unmarshal(normal[2*ACTOR_SIZE:])
	if end.Kind != romtest.END_OF_LIST {
		t.Errorf("terminator kind 0x%x", end.Kind)
	}
	pillar, n := marshalActors(actors, ACTOR_PILLAR, romtest.END_OF_LIST)
	if n != 2 || len(pillar) != 2*PILLAR_ACTOR_SIZE {
		t.Errorf("pillar list %d records in %d bytes; expected no terminator", n, len(pillar))
	}
}

func TestAppendChecksType(t *testing.T) {
	_, scenes := load(t)
	s0 := scenes[0]
	if err := s0.Append(LIST_DOORS, &Pillar{}); err == nil {
		t.Errorf("pillar accepted into doors")
	}
	if err := s0.Append(Room(0), &Actor{}); err == nil {
		t.Errorf("scene 0 has no rooms, append succeeded")
	}
	if err := s0.Append(LIST_DOORS, &Door{}); err != nil || s0.Len(LIST_DOORS) != 2 {
		t.Errorf("door append: %v, len %d", err, s0.Len(LIST_DOORS))
	}
	if _, err := s0.Get(LIST_DOORS, 5); err == nil {
		t.Errorf("expected out of range error")
	}
}

func TestListKindNames(t *testing.T) {
	for _, k := range []ListKind{LIST_INIT, LIST_TEXTS, LIST_SPAWN_ENTRANCES, Room(0), Room(12)} {
		parsed, err := ParseListKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseListKind(%q)=%v,%v; expected %v", k.String(), parsed, err, k)
		}
	}
	if _, err := ParseListKind("nothing"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}
