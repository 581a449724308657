package messaging

import "time"

// Author kinds of stored messages.
const (
	AuthorUser  = "user"
	AuthorAgent = "agent"
)

// Message is a central-channel message as stored by the local messaging server.
type Message struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channelId"`
	AuthorID   string    `json:"authorId"`
	AuthorKind string    `json:"authorKind"`
	Content    string    `json:"content"`
	SourceType string    `json:"sourceType,omitempty"`
	InReplyTo  string    `json:"inReplyTo,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
