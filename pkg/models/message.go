// Package models defines the wire types shared by the moderation
// pipeline services. All structs serialize with the JSON field names
// that form the stable HTTP contract between services.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Message types carried by ChatMessage.
const (
	MessageTypeText   = "text"
	MessageTypeAudio  = "audio"
	MessageTypeSystem = "system"
)

// ChatMessage is a single chat message flowing through the pipeline.
// It is constructed at ingress and immutable afterwards; once a
// decision is persisted the message itself is discarded.
type ChatMessage struct {
	MessageID   string         `json:"message_id,omitempty"`
	UserID      string         `json:"user_id" binding:"required"`
	Username    string         `json:"username"`
	ChannelID   string         `json:"channel_id"`
	Message     string         `json:"message"`
	Timestamp   time.Time      `json:"timestamp"`
	MessageType string         `json:"message_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UserMessage is the body of POST /api/send-message. Identity fields
// default to the web pseudo-user when omitted.
type UserMessage struct {
	Message   string         `json:"message" binding:"required"`
	UserID    string         `json:"user_id"`
	Username  string         `json:"username"`
	ChannelID string         `json:"channel_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ApplyDefaults fills the web pseudo-identity for fields the caller
// left empty.
func (u *UserMessage) ApplyDefaults() {
	if u.UserID == "" {
		u.UserID = "user_web"
	}
	if u.Username == "" {
		u.Username = "WebUser"
	}
	if u.ChannelID == "" {
		u.ChannelID = "web-chat"
	}
}

// ToChatMessage converts a user submission into a pipeline message.
func (u *UserMessage) ToChatMessage() ChatMessage {
	u.ApplyDefaults()
	metadata := u.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return ChatMessage{
		MessageID:   uuid.NewString(),
		UserID:      u.UserID,
		Username:    u.Username,
		ChannelID:   u.ChannelID,
		Message:     u.Message,
		Timestamp:   time.Now().UTC(),
		MessageType: MessageTypeText,
		Metadata:    metadata,
	}
}
