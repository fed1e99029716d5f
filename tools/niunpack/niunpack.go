package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/rom"
	"github.com/mogaika/scene_patcher/toc"
)

var motd = `#
# <=======> Archive meta file <=======>
#
# All numbers in hex
# Lines format:
# index | start | end | container size | decompressed size | saved_filename
#
`

func Unpack(t *toc.TableOfContent, outDir string) error {
	if err := os.MkdirAll(outDir, 0776); err != nil {
		return err
	}
	meta, err := os.Create(filepath.Join(outDir, "_archive_meta_.txt"))
	if err != nil {
		return err
	}
	defer meta.Close()

	fmt.Fprint(meta, motd)

	for _, f := range t.Files() {
		data, err := t.File(f.Index())
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%.3d.bin", f.Index())
		fmt.Fprintf(meta, "%-4x | %-8x | %-8x | %-6x | %-6x | %s\n",
			f.Index(), f.Start(), f.End(), len(f.Container()), data.Len(), name)

		if err := ioutil.WriteFile(filepath.Join(outDir, name), data.Raw(), 0666); err != nil {
			return err
		}
		log.Println(name)
	}
	return nil
}

func main() {
	var romPath, outDir, layoutPath string
	flag.StringVar(&romPath, "rom", "", "Path to game image")
	flag.StringVar(&outDir, "out", "archive_content", "Path where to unpack archive files")
	flag.StringVar(&layoutPath, "layout", "", "Yaml file overriding default image layout")
	flag.Parse()

	layout := config.DefaultLayout()
	if layoutPath != "" {
		var err error
		if layout, err = config.LoadLayout(layoutPath); err != nil {
			log.Fatal(err)
		}
	}

	image, err := ioutil.ReadFile(romPath)
	if err != nil {
		log.Fatal(err)
	}

	t, err := toc.Parse(rom.NewBuffer("image", image), layout)
	if err != nil {
		log.Fatal(err)
	}
	if err := Unpack(t, outDir); err != nil {
		log.Fatal(err)
	}
}
