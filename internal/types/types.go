package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Attachment struct {
	Url      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type Message struct {
	Id         int         `json:"id"`
	SenderId   int         `json:"sender_id"`
	ReceiverId int         `json:"receiver_id,omitempty"`
	GroupId    int         `json:"group_id,omitempty"`
	Content    string      `json:"content"`
	Kind       string      `json:"kind"`
	Attachment *Attachment `json:"attachment,omitempty"`
	PostId     int         `json:"post_id,omitempty"`
	Read       bool        `json:"read"`
	ReadAt     *time.Time  `json:"read_at,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type Conversation struct {
	PeerId      int      `json:"peer_id,omitempty"`
	GroupId     int      `json:"group_id,omitempty"`
	Name        string   `json:"name"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
