package main

import (
	"flag"
	"io/ioutil"
	"log"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/patcher"
	"github.com/mogaika/scene_patcher/utils"
	"github.com/mogaika/scene_patcher/web"
)

func main() {
	var romPath, outPath, layoutPath, addr, encoding string
	var dump bool
	flag.StringVar(&romPath, "rom", "", "Path to game image")
	flag.StringVar(&outPath, "out", "", "Path where patched image is written")
	flag.StringVar(&layoutPath, "layout", "", "Yaml file overriding default image layout")
	flag.StringVar(&addr, "i", "", "Address of inspection server, for example :8000")
	flag.StringVar(&encoding, "encoding", "", "Charmap of text bytes, one of config.ListEncodings()")
	flag.BoolVar(&dump, "dump", false, "Dump extracted scenes to stdout")
	flag.Parse()

	if romPath == "" {
		flag.PrintDefaults()
		return
	}

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

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

	p, err := patcher.NewPatcher(image, layout)
	if err != nil {
		log.Fatal(err)
	}

	if dump {
		for _, s := range p.Scenes() {
			if s != nil {
				utils.Dump(s)
			}
		}
	}

	if addr != "" {
		if err := web.StartServer(addr, p, outPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	if outPath != "" {
		out, err := p.Finalize()
		if err != nil {
			log.Fatal(err)
		}
		if err := ioutil.WriteFile(outPath, out, 0666); err != nil {
			log.Fatal(err)
		}
		log.Printf("Patched image written to %s (0x%x bytes)", outPath, len(out))
	}
}
