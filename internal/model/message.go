package model

import (
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

// ChatMessage represents one turn entry in a buddy's chat log.
// Messages are immutable once appended; the store assigns ID,
// CreatedAt and Sequence.
type ChatMessage struct {
	ID        string    `json:"id"`
	BuddyID   string    `json:"buddy_id"`
	Role      Role      `json:"role"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sequence  uint64    `json:"sequence,omitempty"`
}

// PostMessageRequest is the request to post a chat message.
type PostMessageRequest struct {
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

// PostMessageResponse is the response for a non-streaming chat turn.
type PostMessageResponse struct {
	Saved     *ChatMessage `json:"saved"`
	Assistant *ChatMessage `json:"assistant"`
}

// ListMessagesResponse is the response for listing chat messages,
// newest-first.
type ListMessagesResponse struct {
	Messages []ChatMessage `json:"messages"`
}
