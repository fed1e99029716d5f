package scene

import "github.com/mogaika/scene_patcher/config"

// HighestSeen is maximal sub id referenced by actors per extended object kind, -1 if none
type HighestSeen struct {
	Breakable1        int
	SpecialBreakable1 int
	Breakable3        int
	Pillar            int
	Door              int
	LoadingZone       int
}

func NoneSeen() HighestSeen {
	return HighestSeen{-1, -1, -1, -1, -1, -1}
}

func (h *HighestSeen) see(dst *int, id int) {
	if id > *dst {
		*dst = id
	}
}

// Merge raises every counter of h to the one of o if it is higher
func (h *HighestSeen) Merge(o HighestSeen) {
	h.see(&h.Breakable1, o.Breakable1)
	h.see(&h.SpecialBreakable1, o.SpecialBreakable1)
	h.see(&h.Breakable3, o.Breakable3)
	h.see(&h.Pillar, o.Pillar)
	h.see(&h.Door, o.Door)
	h.see(&h.LoadingZone, o.LoadingZone)
}

// ScanHighest walks actor lists and collects highest sub id of every extended kind.
// Decoding of tables is done separately, this pass only bounds them.
func ScanHighest(kinds config.ObjectKinds, lists ...[]*Actor) HighestSeen {
	h := NoneSeen()
	targets := []struct {
		kind config.ExtendedKind
		dst  *int
	}{
		{kinds.Breakable1, &h.Breakable1},
		{kinds.SpecialBreakable1, &h.SpecialBreakable1},
		{kinds.Breakable3, &h.Breakable3},
		{kinds.Pillar, &h.Pillar},
		{kinds.Door, &h.Door},
		{kinds.LoadingZone, &h.LoadingZone},
	}
	for _, list := range lists {
		for _, a := range list {
			for _, t := range targets {
				if a.Kind == t.kind.Kind {
					h.see(t.dst, int(a.Vars[t.kind.Var]))
				}
			}
		}
	}
	return h
}
