package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Default identifiers of the DM channel between the operator and the trading agent.
const (
	DefaultChannelID    = "91b0c098-b2c3-44f8-9dbb-f0d3ca2626f4"
	DefaultAuthorID     = "f6a0a8d1-f28d-4538-bdab-5eb0b527430c"
	DefaultServerID     = "00000000-0000-0000-0000-000000000000"
	DefaultTargetUserID = "49352196-f6d2-0e9b-a5cd-896a96f5119d"
	DefaultMessageID    = "00b8ecdb-fc80-4fab-a643-93586b43cf53"
	DefaultContent      = "fais un trade"

	SourceClientChat = "client_chat"
	ChannelTypeDM    = "DM"
)

// Identity groups the opaque identifiers the messaging service routes on.
type Identity struct {
	ChannelID    string
	AuthorID     string
	ServerID     string
	TargetUserID string
	MessageID    string
}

// DefaultIdentity returns the identifiers the agent runtime was provisioned with.
func DefaultIdentity() Identity {
	return Identity{
		ChannelID:    DefaultChannelID,
		AuthorID:     DefaultAuthorID,
		ServerID:     DefaultServerID,
		TargetUserID: DefaultTargetUserID,
		MessageID:    DefaultMessageID,
	}
}

// Validate 校验所有标识符都是合法的 UUID。
func (id Identity) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"channel id", id.ChannelID},
		{"author id", id.AuthorID},
		{"server id", id.ServerID},
		{"target user id", id.TargetUserID},
		{"message id", id.MessageID},
	}
	for _, f := range fields {
		if _, err := uuid.Parse(f.value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
	}
	return nil
}

// SenderName mirrors the display name the web client derives for anonymous users.
func (id Identity) SenderName() string {
	short := id.AuthorID
	if len(short) > 8 {
		short = short[:8]
	}
	return "User-" + short
}

// Metadata describes the DM routing of a message.
type Metadata struct {
	IsDM         bool   `json:"isDm"`
	ChannelType  string `json:"channelType"`
	TargetUserID string `json:"targetUserId"`
}

// RawMessage is the client-side view of the message, forwarded untouched to the agent.
type RawMessage struct {
	RoomID     string   `json:"roomId"`
	Source     string   `json:"source"`
	Message    string   `json:"message"`
	Metadata   Metadata `json:"metadata"`
	SenderID   string   `json:"senderId"`
	ServerID   string   `json:"serverId"`
	ChannelID  string   `json:"channelId"`
	MessageID  string   `json:"messageId"`
	SenderName string   `json:"senderName"`
}

// Payload is the body of a central-channel message submission.
type Payload struct {
	AuthorID   string     `json:"author_id"`
	Content    string     `json:"content"`
	ServerID   string     `json:"server_id"`
	RawMessage RawMessage `json:"raw_message"`
	Metadata   Metadata   `json:"metadata"`
	SourceType string     `json:"source_type"`
}

// NewPayload builds the submission for the given identity and prompt.
func NewPayload(id Identity, content string) Payload {
	meta := Metadata{
		IsDM:         true,
		ChannelType:  ChannelTypeDM,
		TargetUserID: id.TargetUserID,
	}

	return Payload{
		AuthorID: id.AuthorID,
		Content:  content,
		ServerID: id.ServerID,
		RawMessage: RawMessage{
			RoomID:     id.ChannelID,
			Source:     SourceClientChat,
			Message:    content,
			Metadata:   meta,
			SenderID:   id.AuthorID,
			ServerID:   id.ServerID,
			ChannelID:  id.ChannelID,
			MessageID:  id.MessageID,
			SenderName: id.SenderName(),
		},
		Metadata:   meta,
		SourceType: SourceClientChat,
	}
}

// DefaultPayload returns the hard-wired "fais un trade" submission.
func DefaultPayload() Payload {
	return NewPayload(DefaultIdentity(), DefaultContent)
}

// ChannelID returns the channel the payload is addressed to.
func (p Payload) ChannelID() string {
	return p.RawMessage.ChannelID
}

// Encode serializes the payload as sent on the wire.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}
