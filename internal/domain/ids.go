package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a time-ordered id with a random suffix, e.g.
// 20251016093512.123456789-1f3a9c0b.
func NewID(now time.Time) string {
	return now.UTC().Format("20060102150405.000000000") + "-" + uuid.NewString()[:8]
}

func NewEntryID(now time.Time) EntryID {
	return EntryID(NewID(now))
}

func NewChatID(now time.Time) ChatID {
	return ChatID(NewID(now))
}

func NewMessageID(now time.Time) MessageID {
	return MessageID(NewID(now))
}
