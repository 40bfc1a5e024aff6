// Package httpapi implements the control API from spec.md §6: a thin
// net/http dispatcher over internal/registry (job lifecycle) and
// internal/search (query/random-word). No router library is used — the
// corpus carries none, and Go's stdlib ServeMux method+path-pattern
// matching is the idiom it reaches for elsewhere.
package httpapi

import (
	"net/http"

	"github.com/rohmanhakim/docs-crawler/internal/registry"
	"github.com/rohmanhakim/docs-crawler/internal/search"
)

// Server wires a Registry and a search Engine into an http.Handler
// implementing every route in spec.md §6.
type Server struct {
	registry *registry.Registry
	engine   *search.Engine
	mux      *http.ServeMux
}

// NewServer builds the control API's handler. The Server implements
// http.Handler, so it can be passed directly to a listener.
func NewServer(reg *registry.Registry, engine *search.Engine) *Server {
	s := &Server{registry: reg, engine: engine, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /crawler/create", s.handleCreate)
	s.mux.HandleFunc("GET /crawler/status/{id}", s.handleStatus)
	s.mux.HandleFunc("POST /crawler/pause/{id}", s.handlePause)
	s.mux.HandleFunc("POST /crawler/resume/{id}", s.handleResume)
	s.mux.HandleFunc("POST /crawler/stop/{id}", s.handleStop)
	s.mux.HandleFunc("POST /crawler/resume-from-files/{id}", s.handleResumeFromFiles)
	s.mux.HandleFunc("GET /crawler/list", s.handleList)
	s.mux.HandleFunc("GET /crawler/stats", s.handleStats)
	s.mux.HandleFunc("POST /crawler/clear", s.handleClear)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /search/random", s.handleSearchRandom)
}
