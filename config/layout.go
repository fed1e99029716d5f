package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Tables holds image file offsets of per-scene tables located in common segment
type Tables struct {
	ActorListStarts       uint32 `yaml:"actor_list_starts"`
	PillarPointers        uint32 `yaml:"pillar_pointers"`
	Breakable1Pointers    uint32 `yaml:"breakable1_pointers"`
	Breakable3Pointers    uint32 `yaml:"breakable3_pointers"`
	DoorPointers          uint32 `yaml:"door_pointers"`
	LoadingZonePointers   uint32 `yaml:"loading_zone_pointers"`
	TextPointers          uint32 `yaml:"text_pointers"`
	SpawnEntrancePointers uint32 `yaml:"spawn_entrance_pointers"`
	OverlayFileTable      uint32 `yaml:"overlay_file_table"`
	OverlayMappedTable    uint32 `yaml:"overlay_mapped_table"`
}

// ExtendedKind is object kind whose actors reference entry of separate table
// by sub id stored in one of parameter vars
type ExtendedKind struct {
	Kind uint16 `yaml:"kind"`
	Var  int    `yaml:"var"`
}

type ObjectKinds struct {
	EndOfList         uint16       `yaml:"end_of_list"`
	Breakable1        ExtendedKind `yaml:"breakable1"`
	SpecialBreakable1 ExtendedKind `yaml:"special_breakable1"`
	Breakable3        ExtendedKind `yaml:"breakable3"`
	Pillar            ExtendedKind `yaml:"pillar"`
	Door              ExtendedKind `yaml:"door"`
	LoadingZone       ExtendedKind `yaml:"loading_zone"`
}

// InstructionPair is overlay offsets of lui and addiu instructions
// that are loading address of special breakables table
type InstructionPair struct {
	Hi uint32 `yaml:"hi"`
	Lo uint32 `yaml:"lo"`
}

type Layout struct {
	SceneCount     int `yaml:"scene_count"`
	TextSceneCount int `yaml:"text_scene_count"`

	ArchiveMarker   string `yaml:"archive_marker"`
	DirectoryOffset uint32 `yaml:"directory_offset"` // relative to marker
	SizeTableGap    uint32 `yaml:"size_table_gap"`
	ContainerFlags  uint32 `yaml:"container_flags"`

	CommonMapped uint32 `yaml:"common_mapped"`
	CommonBase   uint32 `yaml:"common_base"`

	Tables      Tables      `yaml:"tables"`
	ObjectKinds ObjectKinds `yaml:"object_kinds"`

	SpecialBreakable1 map[int]InstructionPair `yaml:"special_breakable1"`
	// common mapped end addresses of spawn entrances for two last scenes
	SpawnEntranceTailEnds [2]uint32 `yaml:"spawn_entrance_tail_ends"`
}

func DefaultLayout() *Layout {
	return &Layout{
		SceneCount:     0x2E,
		TextSceneCount: 0x2A,

		ArchiveMarker:   "Nisitenma-Ichigo",
		DirectoryOffset: 0x10,
		SizeTableGap:    0,
		ContainerFlags:  0x02000000,

		CommonMapped: 0x80000400,
		CommonBase:   0x1000,

		Tables: Tables{
			ActorListStarts:       0x0B7188,
			PillarPointers:        0x0B7468,
			Breakable1Pointers:    0x0B7520,
			Breakable3Pointers:    0x0B75D8,
			DoorPointers:          0x0B7690,
			LoadingZonePointers:   0x0B7748,
			TextPointers:          0x0B7800,
			SpawnEntrancePointers: 0x0B78B8,
			OverlayFileTable:      0x0B7970,
			OverlayMappedTable:    0x0B7AE0,
		},
		ObjectKinds: ObjectKinds{
			EndOfList:         0x07FF,
			Breakable1:        ExtendedKind{Kind: 0x0027},
			SpecialBreakable1: ExtendedKind{Kind: 0x002A},
			Breakable3:        ExtendedKind{Kind: 0x0028},
			Pillar:            ExtendedKind{Kind: 0x01B6},
			Door:              ExtendedKind{Kind: 0x0022},
			LoadingZone:       ExtendedKind{Kind: 0x0023},
		},
		SpecialBreakable1: map[int]InstructionPair{
			0x0B: {Hi: 0x1E58, Lo: 0x1E60},
			0x22: {Hi: 0x0ABC, Lo: 0x0AC4},
		},
		SpawnEntranceTailEnds: [2]uint32{0x800B64D0, 0x800B6530},
	}
}

func (l *Layout) Validate() error {
	if l.SceneCount <= 0 {
		return errors.Errorf("scene_count must be positive, got %d", l.SceneCount)
	}
	if l.TextSceneCount < 0 || l.TextSceneCount > l.SceneCount {
		return errors.Errorf("text_scene_count %d out of [0, %d]", l.TextSceneCount, l.SceneCount)
	}
	if l.ArchiveMarker == "" {
		return errors.Errorf("archive_marker is empty")
	}
	for name, k := range map[string]ExtendedKind{
		"breakable1":         l.ObjectKinds.Breakable1,
		"special_breakable1": l.ObjectKinds.SpecialBreakable1,
		"breakable3":         l.ObjectKinds.Breakable3,
		"pillar":             l.ObjectKinds.Pillar,
		"door":               l.ObjectKinds.Door,
		"loading_zone":       l.ObjectKinds.LoadingZone,
	} {
		if k.Var < 0 || k.Var > 3 {
			return errors.Errorf("object kind %s: var index %d out of [0, 3]", name, k.Var)
		}
		if k.Kind == l.ObjectKinds.EndOfList {
			return errors.Errorf("object kind %s collides with end of list kind 0x%x", name, k.Kind)
		}
	}
	return nil
}

// LoadLayout reads yaml file over default layout
func LoadLayout(path string) (*Layout, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read layout %q", path)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (*Layout, error) {
	l := DefaultLayout()
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, errors.Wrapf(err, "Cannot unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Invalid layout")
	}
	return l, nil
}
