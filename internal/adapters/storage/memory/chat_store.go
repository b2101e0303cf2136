package memory

import (
	"fmt"
	"sync"

	"github.com/PabloGalante/mindweave/internal/domain"
)

// ChatStore keeps companion chats for the lifetime of the process.
type ChatStore struct {
	mu    sync.RWMutex
	chats map[domain.ChatID]domain.Chat
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		chats: make(map[domain.ChatID]domain.Chat),
	}
}

func (s *ChatStore) CreateChat(chat *domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[chat.ID]; exists {
		return fmt.Errorf("chat %s already exists", chat.ID)
	}

	s.chats[chat.ID] = *chat
	return nil
}

func (s *ChatStore) UpdateChat(chat *domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chats[chat.ID]; !exists {
		return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrNotFound)
	}

	s.chats[chat.ID] = *chat
	return nil
}

func (s *ChatStore) GetChat(id domain.ChatID) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}

	return &chat, nil
}
