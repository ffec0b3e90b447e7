package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamEvent is one websocket frame of a streamed run: a transcript delta,
// a terminal error, or the done marker.
type StreamEvent struct {
	Messages []domain.Message `json:"messages,omitempty"`
	Done     bool             `json:"done,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// handleChatWebSocket streams agent runs over a websocket. Each frame the
// client sends is a PredictRequest; the server answers with one frame per
// completed phase, then a done (or error) frame. Runs on one connection are
// sequential; closing the connection abandons the in-flight run at its next
// yield point.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade websocket", "error", err)
		return
	}
	defer ws.Close()

	for {
		var req PredictRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			slog.Error("WebSocket read error", "error", err)
			return
		}
		if len(req.Messages) == 0 {
			if err := ws.WriteJSON(StreamEvent{Error: "messages must not be empty"}); err != nil {
				return
			}
			continue
		}

		if !s.streamRun(ws, r, req) {
			return
		}
	}
}

// streamRun drives one run, pushing each chunk as a frame. Returns false
// when the connection is no longer usable.
func (s *Server) streamRun(ws *websocket.Conn, r *http.Request, req PredictRequest) bool {
	for chunk, err := range s.agent.PredictStream(r.Context(), req.Messages) {
		if err != nil {
			slog.Error("Streamed run failed", "error", err)
			return ws.WriteJSON(StreamEvent{Error: err.Error()}) == nil
		}
		if werr := ws.WriteJSON(StreamEvent{Messages: chunk.Messages}); werr != nil {
			slog.Error("WebSocket write error", "error", werr)
			return false
		}
	}
	return ws.WriteJSON(StreamEvent{Done: true}) == nil
}
