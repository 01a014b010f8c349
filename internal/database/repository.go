package database

import "time"

type ChatRepository interface {
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(id int) (User, error)
	GetAccountByEmail(email string) (User, error)
	// GetFriendshipStatus returns the state of the friendship between the
	// two users regardless of who requested it, or "" when no row exists.
	GetFriendshipStatus(userA, userB int) (string, error)
	GetAcceptedFriendIds(userId int) ([]int, error)
	// GetGroupMembership returns the member's role, or "" when the user is
	// not a member of the group.
	GetGroupMembership(groupId, userId int) (string, error)
	GetGroupMemberIds(groupId int) ([]int, error)
	// GetMarketplacePostOwner returns the owning user id, or 0 when no such
	// post exists.
	GetMarketplacePostOwner(postId int) (int, error)
	CreateMessage(msg Message) (int, error)
	GetMessageById(id int) (Message, error)
	// MarkMessageRead sets the read flag and timestamp. It reports whether
	// the row changed; marking an already-read message is a no-op.
	MarkMessageRead(id int, readAt time.Time) (bool, error)
	GetPrivateMessages(userA, userB, beforeId, limit int) ([]Message, error)
	GetGroupMessages(groupId, beforeId, limit int) ([]Message, error)
	ListConversations(userId int) ([]Conversation, error)
}
