package web

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/scene_patcher/scene"
	"github.com/mogaika/scene_patcher/status"
	"github.com/mogaika/scene_patcher/webutils"
)

var sceneListKinds = []scene.ListKind{
	scene.LIST_INIT,
	scene.LIST_PROXIMITY,
	scene.LIST_PILLAR_ACTORS,
	scene.LIST_PILLARS,
	scene.LIST_BREAKABLES1,
	scene.LIST_SPECIAL_BREAKABLES1,
	scene.LIST_BREAKABLES3,
	scene.LIST_DOORS,
	scene.LIST_LOADING_ZONES,
	scene.LIST_TEXTS,
	scene.LIST_SPAWN_ENTRANCES,
}

type sceneSummary struct {
	ID     int
	Rooms  int
	Counts map[string]int
}

func summary(s *scene.Scene) sceneSummary {
	sum := sceneSummary{ID: s.ID, Rooms: len(s.Rooms), Counts: make(map[string]int)}
	for _, k := range sceneListKinds {
		sum.Counts[k.String()] = s.Len(k)
	}
	for i := range s.Rooms {
		sum.Counts[scene.Room(i).String()] = s.Len(scene.Room(i))
	}
	return sum
}

func sceneFromRequest(r *http.Request) (*scene.Scene, error) {
	param := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(param, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("scene id '%s' is not integer", param)
	}
	s := ServerPatcher.Scene(int(id))
	if s == nil {
		return nil, fmt.Errorf("scene %s has no overlay", param)
	}
	return s, nil
}

func HandlerAjaxScenes(w http.ResponseWriter, r *http.Request) {
	patcherLock.Lock()
	defer patcherLock.Unlock()

	result := make([]sceneSummary, 0)
	for _, s := range ServerPatcher.Scenes() {
		if s != nil {
			result = append(result, summary(s))
		}
	}
	webutils.WriteJson(w, result)
}

func HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	patcherLock.Lock()
	defer patcherLock.Unlock()

	if s, err := sceneFromRequest(r); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, s)
	}
}

func HandlerAjaxSceneList(w http.ResponseWriter, r *http.Request) {
	patcherLock.Lock()
	defer patcherLock.Unlock()

	s, err := sceneFromRequest(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	kind, err := scene.ParseListKind(mux.Vars(r)["kind"])
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	entries := s.Entries(kind)
	if entries == nil {
		entries = []scene.Entry{}
	}
	webutils.WriteJson(w, entries)
}

func HandlerDumpFile(w http.ResponseWriter, r *http.Request) {
	patcherLock.Lock()
	defer patcherLock.Unlock()

	param := mux.Vars(r)["index"]
	index, err := strconv.Atoi(param)
	if err != nil {
		webutils.WriteError(w, fmt.Errorf("file index '%s' is not integer", param))
		return
	}
	buf, err := ServerPatcher.Archive().File(index)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, bytes.NewReader(buf.Raw()), fmt.Sprintf("file_%.3d.bin", index))
}

func HandlerActionFinalize(w http.ResponseWriter, r *http.Request) {
	patcherLock.Lock()
	defer patcherLock.Unlock()

	if OutputPath == "" {
		webutils.WriteError(w, fmt.Errorf("output path is not set, use -out"))
		return
	}
	out, err := ServerPatcher.Finalize()
	if err != nil {
		status.Error("Finalize failed: %v", err)
		webutils.WriteError(w, err)
		return
	}
	if err := ioutil.WriteFile(OutputPath, out, 0666); err != nil {
		webutils.WriteError(w, fmt.Errorf("Cannot write output: %v", err))
		return
	}
	status.Info("Patched image written to %s", OutputPath)
	webutils.WriteJson(w, map[string]interface{}{"path": OutputPath, "size": len(out)})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatusSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
