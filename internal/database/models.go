package database

import "time"

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipDeclined = "declined"
	FriendshipBlocked  = "blocked"
)

const (
	GroupRoleAdmin     = "admin"
	GroupRoleModerator = "moderator"
	GroupRoleMember    = "member"
)

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GroupMember struct {
	GroupId  int
	UserId   int
	Username string
	Role     string
}

// Message is a persisted chat message. Exactly one of ReceiverId and
// GroupId is non-zero. ReadAt is the zero time while the message is unread.
type Message struct {
	Id             int
	SenderId       int
	ReceiverId     int
	GroupId        int
	Content        string
	Kind           string
	AttachmentUrl  string
	AttachmentName string
	AttachmentSize int64
	AttachmentMime string
	PostId         int
	Read           bool
	ReadAt         time.Time
	CreatedAt      time.Time
}

// Conversation is one entry of a user's conversation list: the counterpart
// (peer or group), the most recent message and the number of unread
// messages addressed to the user.
type Conversation struct {
	PeerId      int
	GroupId     int
	Name        string
	LastMessage Message
	UnreadCount int
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}
