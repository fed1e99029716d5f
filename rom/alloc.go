package rom

import "log"

// Allocator hands out file offsets for overlays and archive files.
// It bumps cursor through space originally occupied by scene overlays,
// and once that space is exhausted continues from the start of archive storage.
type Allocator struct {
	cursor       uint32
	overlayEnd   uint32
	storageStart uint32
	inStorage    bool
}

func NewAllocator(overlayStart, overlayEnd, storageStart uint32) *Allocator {
	return &Allocator{
		cursor:       overlayStart,
		overlayEnd:   overlayEnd,
		storageStart: storageStart,
	}
}

func (a *Allocator) Allocate(size int) uint32 {
	if !a.inStorage && (a.cursor >= a.overlayEnd || a.cursor+uint32(size) > a.overlayEnd) {
		log.Printf("[alloc] overlay space exhausted at 0x%x (need 0x%x), jumping to storage 0x%x",
			a.cursor, size, a.storageStart)
		a.cursor = a.storageStart
		a.inStorage = true
	}
	off := a.cursor
	a.cursor += uint32(size)
	return off
}

// Cursor returns next free offset
func (a *Allocator) Cursor() uint32 { return a.cursor }

func (a *Allocator) InStorage() bool { return a.inStorage }
