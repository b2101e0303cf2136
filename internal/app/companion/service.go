// Package companion runs EchoMind chats: a user message goes in, the model's
// reply is streamed into an AI placeholder message fragment by fragment.
package companion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/mindweave/internal/domain"
	"github.com/PabloGalante/mindweave/internal/observability"
)

const (
	Greeting = "Hello, I'm EchoMind. I'm here to listen. What's on your mind today?"

	historyLimit = 20
)

type Service struct {
	model        domain.ChatModel
	chatStore    domain.ChatStore
	messageStore domain.MessageStore
	now          func() time.Time

	// guards read-modify-write of message feedback
	rateMu sync.Mutex
}

func NewService(
	model domain.ChatModel,
	chatStore domain.ChatStore,
	messageStore domain.MessageStore,
) *Service {
	return &Service{
		model:        model,
		chatStore:    chatStore,
		messageStore: messageStore,
		now:          time.Now,
	}
}

// StartChat creates a chat seeded with the EchoMind greeting.
func (s *Service) StartChat(ctx context.Context) (*domain.Chat, *domain.Message, error) {
	now := s.now()
	log := observability.LoggerFromContext(ctx)

	chat := &domain.Chat{
		ID:        domain.NewChatID(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatStore.CreateChat(chat); err != nil {
		log.Error("failed to create chat", "error", err)
		return nil, nil, err
	}

	greeting := &domain.Message{
		ID:        domain.NewMessageID(now),
		ChatID:    chat.ID,
		Author:    domain.RoleAI,
		Text:      Greeting,
		CreatedAt: now,
	}
	if err := s.messageStore.AppendMessage(greeting); err != nil {
		log.Error("failed to append greeting", "error", err)
		return nil, nil, err
	}

	log.Info("chat started", "chat_id", chat.ID)
	return chat, greeting, nil
}

// Send appends the user's message and streams the reply into a new AI
// message. onUpdate (may be nil) sees the AI message after every fragment,
// in arrival order, and once more when it is final.
//
// If the stream fails the AI message carries ChatFallbackText and the
// returned error wraps domain.ErrChat; the chat stays usable.
func (s *Service) Send(
	ctx context.Context,
	chatID domain.ChatID,
	text string,
	onUpdate func(domain.Message),
) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	chat, err := s.chatStore.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With("chat_id", chat.ID)
	if onUpdate == nil {
		onUpdate = func(domain.Message) {}
	}

	history, err := s.messageStore.GetMessagesByChat(chat.ID, historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	now := s.now()
	userMsg := &domain.Message{
		ID:        domain.NewMessageID(now),
		ChatID:    chat.ID,
		Author:    domain.RoleUser,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.messageStore.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	aiMsg := &domain.Message{
		ID:        domain.NewMessageID(s.now()),
		ChatID:    chat.ID,
		Author:    domain.RoleAI,
		CreatedAt: s.now(),
	}
	if err := s.messageStore.AppendMessage(aiMsg); err != nil {
		log.Error("failed to append reply placeholder", "error", err)
		return nil, err
	}

	var acc strings.Builder
	var streamErr error
	for fragment, err := range s.model.StreamReply(ctx, history, text) {
		if err != nil {
			streamErr = err
			break
		}
		acc.WriteString(fragment)
		aiMsg.Text = acc.String()
		if err := s.messageStore.ReplaceMessage(aiMsg); err != nil {
			log.Error("failed to update reply", "error", err)
		}
		onUpdate(*aiMsg)
	}

	if streamErr != nil {
		log.Error("chat stream failed", "error", streamErr)
		aiMsg.Text = domain.ChatFallbackText
	} else {
		aiMsg.Feedback = domain.MessageFeedbackPending
	}
	if err := s.messageStore.ReplaceMessage(aiMsg); err != nil {
		log.Error("failed to store final reply", "error", err)
	}
	onUpdate(*aiMsg)

	chat.UpdatedAt = s.now()
	if err := s.chatStore.UpdateChat(chat); err != nil {
		log.Error("failed to update chat", "error", err)
	}

	if streamErr != nil {
		return aiMsg, fmt.Errorf("%w: %w", domain.ErrChat, streamErr)
	}

	log.Info("reply completed", "message_id", aiMsg.ID, "length", len(aiMsg.Text))
	return aiMsg, nil
}

// RateMessage records a rating on an AI message awaiting one. It reports
// whether the rating was applied; ratings are write-once.
func (s *Service) RateMessage(chatID domain.ChatID, msgID domain.MessageID, rating domain.Rating) bool {
	if !rating.Valid() {
		return false
	}

	s.rateMu.Lock()
	defer s.rateMu.Unlock()

	msg, err := s.messageStore.GetMessage(chatID, msgID)
	if err != nil || msg.Author != domain.RoleAI || msg.Feedback != domain.MessageFeedbackPending {
		return false
	}

	msg.Feedback = domain.MessageFeedback(rating)
	return s.messageStore.ReplaceMessage(msg) == nil
}

// Timeline returns the chat and its last limit messages (all when limit <= 0).
func (s *Service) Timeline(
	ctx context.Context,
	chatID domain.ChatID,
	limit int,
) (*domain.Chat, []*domain.Message, error) {
	log := observability.LoggerFromContext(ctx).With(
		"chat_id", chatID,
		"limit", limit,
	)

	chat, err := s.chatStore.GetChat(chatID)
	if err != nil {
		log.Error("failed to get chat", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesByChat(chatID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Debug("fetched chat timeline", "message_count", len(msgs))
	return chat, msgs, nil
}
