package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/mindweave/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project (MINDWEAVE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) prefDoc(key string) *firestore.DocumentRef {
	return s.client.Collection("prefs").Doc(key)
}

func (s *Store) chatDoc(id domain.ChatID) *firestore.DocumentRef {
	return s.client.Collection("chats").Doc(string(id))
}

func (s *Store) messagesCol(chatID domain.ChatID) *firestore.CollectionRef {
	return s.chatDoc(chatID).Collection("messages")
}

func (s *Store) messageDoc(chatID domain.ChatID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(chatID).Doc(string(msgID))
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type prefDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type chatDoc struct {
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	ChatID    string    `firestore:"chat_id"`
	Author    string    `firestore:"author"`
	Text      string    `firestore:"text"`
	Feedback  string    `firestore:"feedback"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toMessageDoc(msg *domain.Message) messageDoc {
	return messageDoc{
		ChatID:    string(msg.ChatID),
		Author:    string(msg.Author),
		Text:      msg.Text,
		Feedback:  string(msg.Feedback),
		CreatedAt: msg.CreatedAt,
	}
}

func (d messageDoc) toDomain(id string) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(id),
		ChatID:    domain.ChatID(d.ChatID),
		Author:    domain.Role(d.Author),
		Text:      d.Text,
		Feedback:  domain.MessageFeedback(d.Feedback),
		CreatedAt: d.CreatedAt,
	}
}

// ─────────────────────────────────────────
// KVStore implementation
// ─────────────────────────────────────────

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	snap, err := s.prefDoc(key).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("firestore Get %s: %w", key, err)
	}

	var doc prefDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("firestore Get %s decode: %w", key, err)
	}
	return doc.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.prefDoc(key).Set(ctx, prefDoc{Value: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("firestore Set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.prefDoc(key).Delete(ctx); err != nil && !isNotFound(err) {
		return fmt.Errorf("firestore Delete %s: %w", key, err)
	}
	return nil
}

// ─────────────────────────────────────────
// ChatStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateChat(chat *domain.Chat) error {
	ctx := context.Background()

	doc := chatDoc{CreatedAt: chat.CreatedAt, UpdatedAt: chat.UpdatedAt}
	if _, err := s.chatDoc(chat.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateChat: %w", err)
	}
	return nil
}

func (s *Store) UpdateChat(chat *domain.Chat) error {
	ctx := context.Background()

	_, err := s.chatDoc(chat.ID).Update(ctx, []firestore.Update{
		{Path: "updated_at", Value: chat.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore UpdateChat: %w", err)
	}
	return nil
}

func (s *Store) GetChat(id domain.ChatID) (*domain.Chat, error) {
	ctx := context.Background()

	snap, err := s.chatDoc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetChat: %w", err)
	}

	var doc chatDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetChat decode: %w", err)
	}

	return &domain.Chat{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	ctx := context.Background()

	if _, err := s.messageDoc(msg.ChatID, msg.ID).Create(ctx, toMessageDoc(msg)); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) ReplaceMessage(msg *domain.Message) error {
	ctx := context.Background()

	ref := s.messageDoc(msg.ChatID, msg.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toMessageDoc(msg))
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("message %s: %w", msg.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("firestore ReplaceMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessage(chatID domain.ChatID, id domain.MessageID) (*domain.Message, error) {
	ctx := context.Background()

	snap, err := s.messageDoc(chatID, id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetMessage: %w", err)
	}

	var doc messageDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode messageDoc: %w", err)
	}
	return doc.toDomain(snap.Ref.ID), nil
}

func (s *Store) GetMessagesByChat(chatID domain.ChatID, limit int) ([]*domain.Message, error) {
	ctx := context.Background()

	q := s.messagesCol(chatID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesByChat: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, doc.toDomain(snap.Ref.ID))
	}
	return out, nil
}
