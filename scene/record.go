package scene

// Record is provenance of entry: address it was read from and deletion mark.
// Entries created by collaborators have nil Origin.
type Record struct {
	Origin  *uint32 `json:",omitempty" yaml:"origin,omitempty"`
	Deleted bool    `json:",omitempty" yaml:"deleted,omitempty"`
}

func (r *Record) Meta() *Record { return r }

func (r *Record) Delete() { r.Deleted = true }

func (r *Record) OriginAddr() (uint32, bool) {
	if r.Origin == nil {
		return 0, false
	}
	return *r.Origin, true
}

func fromAddr(addr uint32) Record {
	return Record{Origin: &addr}
}

type Entry interface {
	Meta() *Record
}

// Slot is place list occupied in original image
type Slot struct {
	Base    uint32 // mapped address of first entry
	Count   int
	Size    int // bytes, for variable sized lists
	Present bool
	Common  bool // Base belongs to common segment instead of overlay
}

func (s Slot) fitsCount(n int) bool { return s.Present && n <= s.Count }
func (s Slot) fitsSize(n int) bool  { return s.Present && n <= s.Size }
