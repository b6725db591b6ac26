package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tidy/internal/logging"
	"tidy/internal/startup"
	"tidy/internal/store"
)

// Server is the read-only browsing API over the library. It never mutates
// the store; all writes belong to the pipeline stages.
type Server struct {
	store *store.Store
	cfg   *startup.Config
}

// New creates a Server over the given store.
func New(s *store.Store, cfg *startup.Config) *Server {
	return &Server{store: s, cfg: cfg}
}

// Router builds the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/albums", s.listAlbums).Methods("GET")
	api.HandleFunc("/albums/{id:[0-9]+}", s.getAlbum).Methods("GET")
	api.HandleFunc("/items", s.listItems).Methods("GET")
	api.HandleFunc("/items/{id:[0-9]+}", s.getItem).Methods("GET")
	api.HandleFunc("/items/{id:[0-9]+}/thumb", s.itemThumbnail).Methods("GET")
	api.HandleFunc("/items/{id:[0-9]+}/original", s.itemOriginal).Methods("GET")

	return r
}

// ListenAndServe runs the API on the configured port until the server
// fails.
func (s *Server) ListenAndServe() error {
	handler := RequestLogger(s.Router())

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Info("listening on port %s", s.cfg.Port)
	return srv.ListenAndServe()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
