package memory

import (
	"fmt"
	"sync"

	"github.com/PabloGalante/mindweave/internal/domain"
)

// MessageStore keeps chat messages in arrival order. Messages are stored and
// returned by value so callers never share a *Message with the store.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.ChatID][]domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.ChatID][]domain.Message),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ChatID] = append(s.messages[msg.ChatID], *msg)
	return nil
}

// ReplaceMessage overwrites the stored message with the same chat and id.
func (s *MessageStore) ReplaceMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[msg.ChatID]
	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = *msg
			return nil
		}
	}
	return fmt.Errorf("message %s: %w", msg.ID, domain.ErrNotFound)
}

func (s *MessageStore) GetMessage(chatID domain.ChatID, id domain.MessageID) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages[chatID] {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
}

// GetMessagesByChat returns the last limit messages, or all when limit <= 0.
func (s *MessageStore) GetMessagesByChat(chatID domain.ChatID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &m)
	}
	return out, nil
}
