package toc

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/romtest"
)

func TestCompressRoundTrip(t *testing.T) {
	flags := config.DefaultLayout().ContainerFlags
	for _, data := range [][]byte{
		{},
		[]byte("a"),
		bytes.Repeat([]byte("scene data "), 300),
	} {
		c, err := Compress(data, flags)
		if err != nil {
			t.Fatal(err)
		}
		if len(c)%2 != 0 {
			t.Errorf("container of %d bytes has odd length %d", len(data), len(c))
		}
		header := uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3])
		if header&CONTAINER_FLAGS_MASK != flags {
			t.Errorf("header 0x%.8x lost flags 0x%.8x", header, flags)
		}
		if l := int(header & CONTAINER_LENGTH_MASK); l != len(c) && l != len(c)-1 {
			t.Errorf("header length 0x%x; container 0x%x", l, len(c))
		}
		d, err := Decompress(c, flags)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(d, data) {
			t.Errorf("Decompress(Compress(%d bytes)) returned %d bytes", len(data), len(d))
		}
	}
}

func TestDecompressRejectsFlags(t *testing.T) {
	c, _ := Compress([]byte("data"), 0x02000000)
	if _, err := Decompress(c, 0x03000000); err == nil {
		t.Errorf("expected flags mismatch error")
	}
}

func build(files ...[]byte) (*rom.Buffer, *config.Layout) {
	b := romtest.NewBuilder()
	b.Scene(0).Init = b.Scene(0).PutActors()
	b.Files = files
	return rom.NewBuffer("image", b.Build()), b.Layout
}

func TestParse(t *testing.T) {
	files := [][]byte{[]byte("first file"), bytes.Repeat([]byte{7}, 100)}
	image, layout := build(files...)

	tc, err := Parse(image, layout)
	if err != nil {
		t.Fatal(err)
	}
	if tc.Count() != len(files) {
		t.Fatalf("Count()=%d; expected %d", tc.Count(), len(files))
	}
	for i, expected := range files {
		f, _ := tc.Entry(i)
		if f.Size() != uint32(len(expected)) {
			t.Errorf("file %d size %d; expected %d", i, f.Size(), len(expected))
		}
		buf, err := tc.File(i)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Raw(), expected) {
			t.Errorf("file %d=%q; expected %q", i, buf.Raw(), expected)
		}
		again, _ := tc.File(i)
		if again != buf {
			t.Errorf("file %d decompressed twice", i)
		}
	}
	if _, err := tc.File(len(files)); err == nil {
		t.Errorf("expected error for file out of directory")
	}
}

func TestParseWithoutMarker(t *testing.T) {
	layout := romtest.Layout()
	_, err := Parse(rom.NewBuffer("image", make([]byte, 0x100)), layout)
	if errors.Cause(err) != ErrMarkerNotFound {
		t.Errorf("Parse error %v; expected marker not found", err)
	}
}

func TestRepackUpdatesTables(t *testing.T) {
	files := [][]byte{[]byte("untouched"), []byte("short")}
	image, layout := build(files...)
	tc, err := Parse(image, layout)
	if err != nil {
		t.Fatal(err)
	}

	buf, _ := tc.File(1)
	grown := bytes.Repeat([]byte("longer content "), 20)
	buf.SetBytes(0, grown)

	storage := tc.StorageStart()
	alloc := rom.NewAllocator(storage, storage, storage)
	if err := tc.Repack(alloc); err != nil {
		t.Fatal(err)
	}

	reparsed, err := Parse(image, layout)
	if err != nil {
		t.Fatal(err)
	}
	expected := [][]byte{files[0], grown}
	for i := range expected {
		f, _ := reparsed.Entry(i)
		if f.Size() != uint32(len(expected[i])) {
			t.Errorf("file %d size field %d; expected %d", i, f.Size(), len(expected[i]))
		}
		data, err := reparsed.File(i)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data.Raw(), expected[i]) {
			t.Errorf("file %d content %q; expected %q", i, data.Raw(), expected[i])
		}
	}

	first, _ := reparsed.Entry(0)
	second, _ := reparsed.Entry(1)
	if first.Start() != storage || second.Start() != first.End() {
		t.Errorf("files are not back to back: [0x%x,0x%x) [0x%x,0x%x)",
			first.Start(), first.End(), second.Start(), second.End())
	}
}
