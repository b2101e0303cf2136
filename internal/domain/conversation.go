package domain

// Message is a single turn in a companion chat (user or ai).
type Message struct {
	ID        MessageID       `json:"id"`
	ChatID    ChatID          `json:"chat_id"`
	Author    Role            `json:"sender"`
	Text      string          `json:"text"`
	CreatedAt Timestamp       `json:"created_at"`
	Feedback  MessageFeedback `json:"feedback,omitempty"`
}

// Chat is one companion conversation. It lives as long as the process.
type Chat struct {
	ID        ChatID    `json:"id"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}
