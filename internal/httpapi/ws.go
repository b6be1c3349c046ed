package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
)

// inboundMessage is what the browser sends over the socket.
type inboundMessage struct {
	Message string `json:"message"`
}

// outboundMessage is one streamed event to the browser.
type outboundMessage struct {
	Type    string `json:"type"` // "chunk", "done" or "error"
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleWS streams assistant replies chunk by chunk. Closing the socket
// cancels the in-flight upstream request.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L.Warn("websocket upgrade failed", "session", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L.Warn("websocket read failed", "session", sess.ID, "error", err)
			}
			return
		}
		if in.Message == "" {
			continue
		}

		sess.Lock()
		stream, err := s.chatter.StreamMessage(r.Context(), sess.Memory, in.Message)
		if err != nil {
			sess.Unlock()
			if writeErr := conn.WriteJSON(outboundMessage{Type: "error", Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		for chunk := range stream.Chunks() {
			if err := conn.WriteJSON(outboundMessage{Type: "chunk", Content: chunk}); err != nil {
				// Browser went away; cancel upstream and stop.
				stream.Close()
				sess.Unlock()
				return
			}
		}
		streamErr := stream.Err()
		sess.Unlock()

		if streamErr != nil {
			if err := conn.WriteJSON(outboundMessage{Type: "error", Error: streamErr.Error()}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(outboundMessage{Type: "done"}); err != nil {
			return
		}
	}
}
