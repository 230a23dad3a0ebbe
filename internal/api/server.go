package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/streed/vault-suggest/internal/config"
	apperrors "github.com/streed/vault-suggest/internal/errors"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/pipeline"
	"github.com/streed/vault-suggest/internal/suggest"
)

// Pipeline is the slice of pipeline behavior the HTTP layer needs; tests
// substitute a stub.
type Pipeline interface {
	Suggest(text string, topK int) (*suggest.Result, error)
	Process(text, filename string) (*pipeline.Result, error)
	WriteNote(title, content string, result *pipeline.Result) (string, error)
	Snapshot() *suggest.Snapshot
	Reload() error
}

type Server struct {
	cfg      *config.Config
	pipeline Pipeline
	server   *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type SuggestRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

func (r SuggestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.TopK, validation.Min(0), validation.Max(100)),
	)
}

type ProcessRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	Write bool   `json:"write"`
}

func (r ProcessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
		validation.Field(&r.Title, validation.Required.When(r.Write)),
	)
}

type ProcessResponse struct {
	*pipeline.Result
	NotePath string `json:"note_path,omitempty"`
}

func NewServer(cfg *config.Config, p Pipeline) *Server {
	return &Server{cfg: cfg, pipeline: p}
}

func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	return s.server.ListenAndServe()
}

// Handler builds the routing table. Exposed separately so tests can drive
// the server through httptest.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/suggest", s.handleSuggest).Methods("POST")
	api.HandleFunc("/process", s.handleProcess).Methods("POST")
	api.HandleFunc("/tags", s.handleListTags).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/reload", s.handleReload).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return c.Handler(router)
}

func (s *Server) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.pipeline.Snapshot()

	health := map[string]interface{}{
		"status":     "ok",
		"timestamp":  time.Now().Format(time.RFC3339),
		"num_notes":  len(snap.Meta),
		"num_tags":   len(snap.Vocab),
		"vault_path": s.cfg.VaultPath,
	}
	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Snapshot().SortedVocab())
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	logger.LogRequest(r.Method, r.URL.Path, r.RemoteAddr)

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.pipeline.Suggest(req.Text, req.TopK)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	logger.LogRequest(r.Method, r.URL.Path, r.RemoteAddr)

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.pipeline.Process(req.Text, req.Title)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	resp := ProcessResponse{Result: result}
	if req.Write {
		path, err := s.pipeline.WriteNote(req.Title, req.Text, result)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.NotePath = path
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Reload(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	snap := s.pipeline.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]int{
		"num_notes": len(snap.Meta),
		"num_tags":  len(snap.Vocab),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrRetrievalUnavailable),
		errors.Is(err, apperrors.ErrArbiterUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode < 400,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   err.Error(),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}
