// Package httpapi exposes the chat service over HTTP: a JSON API for
// sessions and messages, a WebSocket for streamed replies, and the embedded
// browser UI.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/chat"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/config"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/session"
)

// Chatter is the slice of the chat manager the HTTP layer needs.
type Chatter interface {
	HandleMessage(ctx context.Context, mem *memory.Manager, userText string) (string, error)
	StreamMessage(ctx context.Context, mem *memory.Manager, userText string) (*chat.Stream, error)
}

// Server wires the chat manager and session manager into HTTP handlers.
type Server struct {
	cfg      config.ServerConfig
	sessions *session.Manager
	chatter  Chatter
	upgrader websocket.Upgrader
}

// New creates the HTTP server.
func New(cfg config.ServerConfig, sessions *session.Manager, chatter Chatter) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		chatter:  chatter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly configured otherwise.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Delete("/v1/sessions/{id}", s.handleEndSession)
	r.Get("/v1/sessions/{id}/history", s.handleHistory)
	r.Post("/v1/sessions/{id}/clear", s.handleClear)
	r.Post("/v1/sessions/{id}/messages", s.handleMessage)
	r.Get("/v1/sessions/{id}/ws", s.handleWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	logger.L.Info("session created", "session", sess.ID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":         sess.ID,
		"started_at": sess.StartedAt,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.End(id); err != nil {
		respondError(w, err)
		return
	}
	logger.L.Info("session ended", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": sess.Memory.History()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Memory.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	sess.Lock()
	defer sess.Unlock()
	reply, err := s.chatter.HandleMessage(r.Context(), sess.Memory, payload.Message)
	if err != nil {
		logger.L.Error("message handling failed", "session", sess.ID, "error", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reply": reply})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L.Error("failed to encode response", "error", err)
	}
}

// respondError maps the error taxonomy onto HTTP statuses. The message is
// surfaced to the user per the propagation policy.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, llm.ErrUpstream):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}
