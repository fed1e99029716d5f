package rom

import "fmt"

// Region is a contiguous piece of memory that is visible to game at Mapped address
// and stored at Base offset inside of some buffer (image or overlay)
type Region struct {
	Name   string `yaml:"name"`
	Mapped uint32 `yaml:"mapped"`
	Base   uint32 `yaml:"base"`
}

func (r Region) ToOffset(mapped uint32) uint32 {
	return mapped - r.Mapped + r.Base
}

func (r Region) ToMapped(off uint32) uint32 {
	return off - r.Base + r.Mapped
}

// Contains reports whether mapped address belongs to region of provided size
func (r Region) Contains(mapped uint32, size int) bool {
	return mapped >= r.Mapped && uint64(mapped-r.Mapped) < uint64(size)
}

func (r Region) String() string {
	return fmt.Sprintf("region<%s>[m:0x%.8x,b:0x%x]", r.Name, r.Mapped, r.Base)
}
