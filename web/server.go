package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/document"
)

type server struct {
	doc *document.Document
	log *zap.Logger
}

// NewHandler serves the inspection api of doc.
func NewHandler(doc *document.Document, log *zap.Logger) http.Handler {
	s := &server{doc: doc, log: dae.Logger(log)}

	r := mux.NewRouter()
	r.HandleFunc("/json/geometries", s.HandlerAjaxGeometries).Methods(http.MethodGet)
	r.HandleFunc("/json/geometry/{id}", s.HandlerAjaxGeometry).Methods(http.MethodGet)
	r.HandleFunc("/json/skin/{id}", s.HandlerAjaxSkin).Methods(http.MethodGet)
	r.HandleFunc("/json/source/{id}", s.HandlerAjaxSource).Methods(http.MethodGet)
	r.HandleFunc("/json/sources", s.HandlerAjaxSources).Methods(http.MethodGet)
	r.HandleFunc("/export/{id}", s.HandlerExportGeometry).Methods(http.MethodGet)
	r.HandleFunc("/dump/geometry/{id}", s.HandlerDumpGeometry).Methods(http.MethodGet)
	return r
}

func StartServer(addr string, doc *document.Document, log *zap.Logger) error {
	h := handlers.RecoveryHandler()(NewHandler(doc, log))
	h = handlers.LoggingHandler(os.Stdout, h)

	dae.Logger(log).Info("[web] Starting server", zap.String("addr", addr))

	return http.ListenAndServe(addr, h)
}
