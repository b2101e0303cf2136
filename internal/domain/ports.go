package domain

import (
	"context"
	"iter"
)

// Analyzer turns journal text into a structured analysis.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// ChatModel produces a companion reply as a finite, non-restartable
// sequence of text fragments. A non-nil error ends the sequence.
type ChatModel interface {
	StreamReply(ctx context.Context, history []*Message, text string) iter.Seq2[string, error]
}

// Educator explains a psychoeducational topic using only the given background text.
type Educator interface {
	Explain(ctx context.Context, topic, background string) (string, error)
}

// Summarizer writes a progress summary for a set of analyzed entries.
type Summarizer interface {
	Summarize(ctx context.Context, entries []JournalEntry, period Period) (string, error)
}

// Affirmer writes a one-sentence affirmation from recent insights (may be empty).
type Affirmer interface {
	Affirm(ctx context.Context, insights []string) (string, error)
}

// LLMClient bundles every collaborator the application talks to.
type LLMClient interface {
	Analyzer
	ChatModel
	Educator
	Summarizer
	Affirmer
}

// ChatStore defines chat persistence.
type ChatStore interface {
	CreateChat(chat *Chat) error
	UpdateChat(chat *Chat) error
	GetChat(id ChatID) (*Chat, error)
}

// MessageStore defines chat message persistence.
type MessageStore interface {
	AppendMessage(msg *Message) error
	ReplaceMessage(msg *Message) error
	GetMessage(chatID ChatID, id MessageID) (*Message, error)
	GetMessagesByChat(chatID ChatID, limit int) ([]*Message, error)
}

// KVStore is the small local key-value storage used for preferences
// (onboarding flag, cached affirmation). Missing keys return ErrNotFound.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
