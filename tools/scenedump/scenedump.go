package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mogaika/scene_patcher/config"
	"github.com/mogaika/scene_patcher/patcher"
)

func main() {
	var romPath, outPath, layoutPath string
	var sceneID int
	flag.StringVar(&romPath, "rom", "", "Path to game image")
	flag.StringVar(&outPath, "out", "", "Path of yaml dump, stdout if empty")
	flag.StringVar(&layoutPath, "layout", "", "Yaml file overriding default image layout")
	flag.IntVar(&sceneID, "scene", -1, "Dump only this scene")
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
	p, err := patcher.NewPatcher(image, layout)
	if err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if outPath != "" {
		if out, err = os.Create(outPath); err != nil {
			log.Fatal(err)
		}
		defer out.Close()
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close()

	for _, s := range p.Scenes() {
		if s == nil || (sceneID >= 0 && s.ID != sceneID) {
			continue
		}
		if err := enc.Encode(s); err != nil {
			log.Fatal(err)
		}
	}
}
