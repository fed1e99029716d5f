package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/scene_patcher/patcher"
	"github.com/mogaika/scene_patcher/status"
)

var (
	ServerPatcher *patcher.Patcher
	OutputPath    string

	// http handlers run concurrently, patcher is not safe for that
	patcherLock sync.Mutex
)

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/scenes", HandlerAjaxScenes)
	r.HandleFunc("/json/scene/{id}", HandlerAjaxScene)
	r.HandleFunc("/json/scene/{id}/{kind}", HandlerAjaxSceneList)
	r.HandleFunc("/dump/file/{index}", HandlerDumpFile)
	r.HandleFunc("/action/finalize", HandlerActionFinalize)
	r.HandleFunc("/ws/status", HandlerStatusSocket)
	return r
}

func StartServer(addr string, p *patcher.Patcher, outputPath string) error {
	ServerPatcher = p
	OutputPath = outputPath

	p.SetProgress(func(progress float32, msg string) {
		status.Progress(progress, "%s", msg)
	})

	r := NewRouter()
	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
