// Package patcher is entry point for collaborators: it extracts every scene of image,
// gives access to records and bytes and produces patched image.
package patcher

import (
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/scene"
	"github.com/mogaika/scene_patcher/toc"
)

// IMAGE selects raw image in ReadBytes and WriteBytes instead of archive file
const IMAGE = -1

var ErrFinalized = errors.New("[patcher] image already finalized")

type ProgressFunc func(progress float32, msg string)

type Patcher struct {
	env       *scene.Env
	toc       *toc.TableOfContent
	scenes    []*scene.Scene
	finalized bool
	progress  ProgressFunc
}

// NewPatcher takes ownership of image and extracts every scene of it.
// If layout is nil default one is used.
func NewPatcher(image []byte, layout *config.Layout) (p *Patcher, err error) {
	if layout == nil {
		layout = config.DefaultLayout()
	}
	buf := rom.NewBuffer("image", image)
	defer rom.Catch(&err, "[patcher] NewPatcher")

	t, err := toc.Parse(buf, layout)
	if err != nil {
		return nil, errors.Wrapf(err, "[patcher] Unsupported image")
	}

	p = &Patcher{
		env:    scene.NewEnv(buf, layout),
		toc:    t,
		scenes: make([]*scene.Scene, layout.SceneCount),
	}
	for id := range p.scenes {
		s, err := scene.Extract(p.env, id)
		if errors.Cause(err) == scene.ErrNoOverlay {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "[patcher] Unsupported image")
		}
		p.scenes[id] = s
	}
	log.Printf("[patcher] Extracted %d scenes, %d archive files", p.SceneCount(), t.Count())
	return p, nil
}

func (p *Patcher) SetProgress(f ProgressFunc) { p.progress = f }

func (p *Patcher) report(progress float32, format string, args ...interface{}) {
	if p.progress != nil {
		p.progress(progress, fmt.Sprintf(format, args...))
	}
}

func (p *Patcher) Layout() *config.Layout { return p.env.Layout }

func (p *Patcher) Archive() *toc.TableOfContent { return p.toc }

func (p *Patcher) Finalized() bool { return p.finalized }

// SceneCount is number of scenes that have overlay
func (p *Patcher) SceneCount() int {
	n := 0
	for _, s := range p.scenes {
		if s != nil {
			n++
		}
	}
	return n
}

// Scenes returns extracted scenes indexed by id, nil for scenes without overlay
func (p *Patcher) Scenes() []*scene.Scene { return p.scenes }

// Scene returns nil with warning if scene is out of range or has no overlay
func (p *Patcher) Scene(id int) *scene.Scene {
	if id < 0 || id >= len(p.scenes) {
		log.Printf("[WARNING] [patcher] scene 0x%x out of range 0x%x", id, len(p.scenes))
		return nil
	}
	if p.scenes[id] == nil {
		log.Printf("[WARNING] [patcher] scene 0x%x has no overlay", id)
	}
	return p.scenes[id]
}

// Count returns 0 with warning for kinds that scene does not have
func (p *Patcher) Count(id int, kind scene.ListKind) int {
	s := p.Scene(id)
	if s == nil {
		return 0
	}
	n := s.Len(kind)
	if n == 0 {
		log.Printf("[WARNING] [patcher] %v has no %v", s, kind)
	}
	return n
}

// Record returns handle of entry, changes of its fields are serialized on Finalize
func (p *Patcher) Record(id int, kind scene.ListKind, index int) (scene.Entry, error) {
	s, err := p.mutable(id)
	if err != nil {
		return nil, err
	}
	return s.Get(kind, index)
}

func (p *Patcher) Delete(id int, kind scene.ListKind, index int) error {
	s, err := p.mutable(id)
	if err != nil {
		return err
	}
	return s.Delete(kind, index)
}

func (p *Patcher) Append(id int, kind scene.ListKind, e scene.Entry) error {
	s, err := p.mutable(id)
	if err != nil {
		return err
	}
	if e == nil {
		return errors.Errorf("[patcher] nil entry")
	}
	if e.Meta().Origin != nil {
		return errors.Errorf("[patcher] appended entry already has origin 0x%.8x", *e.Meta().Origin)
	}
	return s.Append(kind, e)
}

func (p *Patcher) InsertDropID(id, breakable int, dropID uint16) error {
	s, err := p.mutable(id)
	if err != nil {
		return err
	}
	return s.InsertDropID(breakable, dropID)
}

func (p *Patcher) RemoveDropID(id, breakable, index int) error {
	s, err := p.mutable(id)
	if err != nil {
		return err
	}
	return s.RemoveDropID(breakable, index)
}

func (p *Patcher) mutable(id int) (*scene.Scene, error) {
	if p.finalized {
		return nil, ErrFinalized
	}
	s := p.Scene(id)
	if s == nil {
		return nil, errors.Errorf("[patcher] scene 0x%x is not available", id)
	}
	return s, nil
}

func (p *Patcher) buffer(file int) (*rom.Buffer, error) {
	if file == IMAGE {
		return p.env.Image, nil
	}
	return p.toc.File(file)
}

func (p *Patcher) ReadBytes(file int, off uint32, n int) (b []byte, err error) {
	defer rom.Catch(&err, "[patcher] ReadBytes")
	buf, err := p.buffer(file)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(off, n), nil
}

// WriteBytes into archive file marks it for recompression
func (p *Patcher) WriteBytes(file int, off uint32, b []byte) error {
	if p.finalized {
		return ErrFinalized
	}
	buf, err := p.buffer(file)
	if err != nil {
		return err
	}
	buf.SetBytes(off, b)
	return nil
}

// Finalize serializes scenes in ascending order and repacks archive after them.
// Can be called only once, patcher is not usable after.
func (p *Patcher) Finalize() (out []byte, err error) {
	if p.finalized {
		return nil, ErrFinalized
	}
	p.finalized = true
	defer rom.Catch(&err, "[patcher] Finalize")

	start, end, ok := p.env.OverlayBounds()
	storage := p.toc.StorageStart()
	if p.toc.Count() == 0 {
		storage = uint32(p.env.Image.Len())
	}
	if !ok {
		start, end = storage, storage
	}
	alloc := rom.NewAllocator(start, end, storage)

	total := float32(len(p.scenes) + 1)
	for id, s := range p.scenes {
		if s == nil {
			continue
		}
		p.report(float32(id)/total, "Serializing %v", s)
		if err := s.Serialize(p.env, alloc); err != nil {
			return nil, errors.Wrapf(err, "[patcher] Finalize")
		}
	}

	p.report(float32(len(p.scenes))/total, "Repacking %d archive files", p.toc.Count())
	if err := p.toc.Repack(alloc); err != nil {
		return nil, errors.Wrapf(err, "[patcher] Finalize")
	}
	p.report(1, "Done, image size 0x%x", p.env.Image.Len())
	return p.env.Image.Raw(), nil
}
