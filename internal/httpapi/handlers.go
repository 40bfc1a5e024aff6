package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rohmanhakim/docs-crawler/internal/config"
)

type createRequest struct {
	Origin           string  `json:"origin"`
	MaxDepth         int     `json:"max_depth"`
	HitRate          float64 `json:"hit_rate"`
	MaxQueueCapacity int     `json:"max_queue_capacity"`
	MaxURLsToVisit   *int    `json:"max_urls_to_visit"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	input := config.JobConfigInput{
		Origin:            req.Origin,
		MaxDepth:          req.MaxDepth,
		HitRate:           req.HitRate,
		MaxQueueCapacity:  req.MaxQueueCapacity,
		HasMaxURLsToVisit: req.MaxURLsToVisit != nil,
	}
	if req.MaxURLsToVisit != nil {
		input.MaxURLsToVisit = *req.MaxURLsToVisit
	}

	snapshot, err := s.registry.Create(input)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.registry.Pause)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.registry.Resume)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.registry.Stop)
}

func (s *Server) handleResumeFromFiles(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.registry.ResumeFromFiles)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, transition func(string) error) {
	id := r.PathValue("id")
	if err := transition(id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	snapshot, err := s.registry.Get(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Stats())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	result, err := s.registry.ClearAll()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSearch serves GET /search?query=&pageLimit=&pageOffset=&sortBy=relevance.
// Relevance ranking is the only supported order; sortBy is accepted for
// forward compatibility with the spec's query shape but not otherwise
// consulted.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "pageLimit", 0)
	offset := queryInt(r, "pageOffset", 0)

	page, err := s.engine.Search(query, limit, offset)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSearchRandom(w http.ResponseWriter, r *http.Request) {
	word, err := s.engine.RandomWord()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"word": word})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
