package httpadapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

const (
	streamWriteWait = 10 * time.Second
	streamReadLimit = 64 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Same open policy as withCORS.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamRequest is one client frame: a user message to send.
type streamRequest struct {
	Text string `json:"text"`
}

// streamFrame is pushed for every reply fragment and once with Done set.
type streamFrame struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	Feedback string `json:"feedback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleChatStream upgrades to a websocket. Each {text} the client sends is
// answered with the growing AI reply, one frame per fragment, then a final
// frame with done=true.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	if _, _, err := s.Chats.Timeline(r.Context(), id, 1); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		return
	}
	defer conn.Close()
	conn.SetReadLimit(streamReadLimit)

	ctx := r.Context()
	log := observability.LoggerFromContext(ctx).With("chat_id", id)
	log.Info("chat stream opened")

	write := func(f streamFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return conn.WriteJSON(f)
	}

	for {
		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("chat stream read ended", "error", err)
			}
			return
		}

		var writeErr error
		reply, err := s.Chats.Send(ctx, id, req.Text, func(m domain.Message) {
			if writeErr == nil {
				writeErr = write(streamFrame{ID: string(m.ID), Text: m.Text})
			}
		})

		final := streamFrame{Done: true}
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrChat):
			final.Error = domain.UserMessage(err)
		default:
			// Nothing was streamed (empty text, unknown chat).
			if writeErr = write(streamFrame{Done: true, Error: domain.UserMessage(err)}); writeErr != nil {
				return
			}
			continue
		}
		if writeErr != nil {
			log.Info("chat stream closed during reply", "error", writeErr)
			return
		}

		final.ID = string(reply.ID)
		final.Text = reply.Text
		final.Feedback = string(reply.Feedback)
		if err := write(final); err != nil {
			return
		}
	}
}
