package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
)

type chatResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type getChatResponse struct {
	Chat     chatResponse      `json:"chat"`
	Messages []messageResponse `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Message messageResponse `json:"message"`
	// Error is set when the reply stream failed and Message holds the fallback.
	Error string `json:"error,omitempty"`
}

type rateMessageRequest struct {
	Rating domain.Rating `json:"rating" validate:"required,oneof=good bad"`
}

// /chats
func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	chat, greeting, err := s.Chats.StartChat(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, getChatResponse{
		Chat:     toChatResponse(chat),
		Messages: []messageResponse{toMessageResponse(greeting)},
	})
}

// /chats/{id}, /chats/{id}/messages, /chats/{id}/messages/{msgId}/feedback,
// /chats/{id}/stream
func (s *Server) handleChatWithID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/chats/")
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	id := domain.ChatID(parts[0])

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetChat(w, r, id)

	case len(parts) == 2 && parts[1] == "messages":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSendMessage(w, r, id)

	case len(parts) == 2 && parts[1] == "stream":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleChatStream(w, r, id)

	case len(parts) == 4 && parts[1] == "messages" && parts[3] == "feedback":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleRateMessage(w, r, id, domain.MessageID(parts[2]))

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	chat, msgs, err := s.Chats.Timeline(r.Context(), id, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getChatResponse{
		Chat:     toChatResponse(chat),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, domain.UserMessage(domain.ErrEmptyMessage))
		return
	}

	reply, err := s.Chats.Send(r.Context(), id, req.Text, nil)
	if err != nil && !errors.Is(err, domain.ErrChat) {
		writeError(w, r, err)
		return
	}

	resp := sendMessageResponse{Message: toMessageResponse(reply)}
	if err != nil {
		resp.Error = domain.UserMessage(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRateMessage(w http.ResponseWriter, r *http.Request, chatID domain.ChatID, msgID domain.MessageID) {
	var req rateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := domain.ValidateStruct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if !s.Chats.RateMessage(chatID, msgID, req.Rating) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "only a finished AI reply can be rated, once",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// ─────────────────────────────────────────────
// Chat Helpers
// ─────────────────────────────────────────────

func toChatResponse(c *domain.Chat) chatResponse {
	return chatResponse{
		ID:        string(c.ID),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		ChatID:    string(m.ChatID),
		Sender:    string(m.Author),
		Text:      m.Text,
		Feedback:  string(m.Feedback),
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}
