package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/mindweave/internal/domain"
)

func TestChatStore(t *testing.T) {
	s := NewChatStore()
	now := time.Now()
	chat := &domain.Chat{ID: "c1", CreatedAt: now, UpdatedAt: now}

	require.NoError(t, s.CreateChat(chat))
	assert.Error(t, s.CreateChat(chat))

	chat.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, s.UpdateChat(chat))

	got, err := s.GetChat("c1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), got.UpdatedAt)

	_, err = s.GetChat("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateChat(&domain.Chat{ID: "missing"}), domain.ErrNotFound)
}

func TestMessageStoreOrderAndLimit(t *testing.T) {
	s := NewMessageStore()
	for _, id := range []domain.MessageID{"m1", "m2", "m3"} {
		require.NoError(t, s.AppendMessage(&domain.Message{ID: id, ChatID: "c1", Text: string(id)}))
	}
	require.NoError(t, s.AppendMessage(&domain.Message{ID: "x", ChatID: "c2"}))

	all, err := s.GetMessagesByChat("c1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.MessageID("m1"), all[0].ID)

	last, err := s.GetMessagesByChat("c1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, domain.MessageID("m2"), last[0].ID)
	assert.Equal(t, domain.MessageID("m3"), last[1].ID)
}

func TestMessageStoreReplaceDoesNotAlias(t *testing.T) {
	s := NewMessageStore()
	msg := &domain.Message{ID: "m1", ChatID: "c1", Author: domain.RoleAI}
	require.NoError(t, s.AppendMessage(msg))

	msg.Text = "changed outside"
	got, err := s.GetMessage("c1", "m1")
	require.NoError(t, err)
	assert.Empty(t, got.Text)

	msg.Feedback = domain.MessageFeedbackPending
	require.NoError(t, s.ReplaceMessage(msg))
	got, err = s.GetMessage("c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "changed outside", got.Text)
	assert.Equal(t, domain.MessageFeedbackPending, got.Feedback)

	assert.ErrorIs(t, s.ReplaceMessage(&domain.Message{ID: "nope", ChatID: "c1"}), domain.ErrNotFound)
	_, err = s.GetMessage("c1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
