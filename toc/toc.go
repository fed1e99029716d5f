// Package toc handles directory of compressed auxiliary files packed into image
package toc

import (
	"bytes"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/utils"
)

const DIRECTORY_ENTRY_SIZE = 8

var ErrMarkerNotFound = errors.New("[toc] archive marker not found")

type File struct {
	index int
	start uint32
	end   uint32
	size  uint32 // decompressed size from size table

	raw  []byte      // container as it was in original image
	data *rom.Buffer // decompressed, nil until first access
}

func (f *File) Index() int         { return f.index }
func (f *File) Start() uint32      { return f.start }
func (f *File) End() uint32        { return f.end }
func (f *File) Size() uint32       { return f.size }
func (f *File) Decompressed() bool { return f.data != nil }
func (f *File) Touched() bool      { return f.data != nil && f.data.Dirty() }
func (f *File) Container() []byte  { return f.raw }

type TableOfContent struct {
	image  *rom.Buffer
	layout *config.Layout

	markerOffset    uint32
	directoryOffset uint32
	sizesOffset     uint32

	files []*File
}

func findMarker(image *rom.Buffer, marker string) (uint32, error) {
	pos := bytes.Index(image.Raw(), []byte(marker))
	if pos < 0 {
		return 0, errors.Wrapf(ErrMarkerNotFound, "marker %q", utils.DumpToOneLineString([]byte(marker)))
	}
	return uint32(pos), nil
}

// Parse reads directory and size tables. Original containers are copied, so
// image space occupied by them can be reused on repack.
func Parse(image *rom.Buffer, layout *config.Layout) (t *TableOfContent, err error) {
	defer rom.Catch(&err, "[toc] Parse")

	markerOffset, err := findMarker(image, layout.ArchiveMarker)
	if err != nil {
		return nil, err
	}

	t = &TableOfContent{
		image:           image,
		layout:          layout,
		markerOffset:    markerOffset,
		directoryOffset: markerOffset + layout.DirectoryOffset,
	}

	for off := t.directoryOffset; ; off += DIRECTORY_ENTRY_SIZE {
		start := image.U32(off)
		if start == 0 {
			break
		}
		end := image.U32(off + 4)
		if end < start {
			return nil, errors.Errorf("[toc] file %d has end 0x%x before start 0x%x", len(t.files), end, start)
		}
		t.files = append(t.files, &File{
			index: len(t.files),
			start: start,
			end:   end,
			raw:   image.Bytes(start, int(end-start)),
		})
	}

	t.sizesOffset = markerOffset - uint32(len(t.files))*4 - layout.SizeTableGap
	for _, f := range t.files {
		f.size = image.U32(t.sizesOffset + uint32(f.index)*4)
	}

	log.Printf("[toc] Found %d archive files, marker at 0x%x, sizes at 0x%x",
		len(t.files), t.markerOffset, t.sizesOffset)
	return t, nil
}

func (t *TableOfContent) Count() int { return len(t.files) }

func (t *TableOfContent) Files() []*File { return t.files }

func (t *TableOfContent) Entry(index int) (*File, error) {
	if index < 0 || index >= len(t.files) {
		return nil, errors.Errorf("[toc] Cannot find file with index %d (files %d)", index, len(t.files))
	}
	return t.files[index], nil
}

// File returns decompressed mutable content of file. Decompression happens once.
func (t *TableOfContent) File(index int) (*rom.Buffer, error) {
	f, err := t.Entry(index)
	if err != nil {
		return nil, err
	}
	if f.data == nil {
		data, err := Decompress(f.raw, t.layout.ContainerFlags)
		if err != nil {
			return nil, errors.Wrapf(err, "[toc] file %d", index)
		}
		if uint32(len(data)) != f.size {
			log.Printf("[WARNING] [toc] file %d decompressed to 0x%x bytes, size table says 0x%x",
				index, len(data), f.size)
		}
		f.data = rom.NewBuffer(fileBufferName(index), data)
	}
	return f.data, nil
}

func fileBufferName(index int) string {
	return fmt.Sprintf("file#%d", index)
}

// StorageStart is file offset of first archive file
func (t *TableOfContent) StorageStart() uint32 {
	var start uint32
	for i, f := range t.files {
		if i == 0 || f.start < start {
			start = f.start
		}
	}
	return start
}

// Repack writes every file back to back using allocator.
// Files that were touched are recompressed and their decompressed size updated.
func (t *TableOfContent) Repack(alloc *rom.Allocator) error {
	for _, f := range t.files {
		container := f.raw
		if f.Touched() {
			c, err := Compress(f.data.Raw(), t.layout.ContainerFlags)
			if err != nil {
				return errors.Wrapf(err, "[toc] Cannot recompress file %d", f.index)
			}
			container = c
			f.size = uint32(f.data.Len())
			t.image.SetU32(t.sizesOffset+uint32(f.index)*4, f.size)
		}

		off := alloc.Allocate(len(container))
		t.image.SetBytes(off, container)

		f.start = off
		f.end = off + uint32(len(container))
		f.raw = container
		entry := t.directoryOffset + uint32(f.index)*DIRECTORY_ENTRY_SIZE
		t.image.SetU32(entry, f.start)
		t.image.SetU32(entry+4, f.end)
	}
	log.Printf("[toc] Repacked %d files, storage ends at 0x%x", len(t.files), alloc.Cursor())
	return nil
}
