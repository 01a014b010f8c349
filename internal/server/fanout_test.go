package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/agrolink/chat-service/internal/database"
	"github.com/agrolink/chat-service/internal/types"
)

func TestHandleTyping(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetFriendshipStatus", 1, 2).Return(database.FriendshipAccepted, nil)

	cs := newTestChatServer(t, db)
	sender := newTestClient(t, cs, types.User{Id: 1, Username: "alice"})
	peer := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	cs.presence.Register(1, sender)
	cs.presence.Register(2, peer)

	cs.handleTyping(&ClientMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Typing:      &Typing{PeerId: 2, Started: true},
		UserId:      1,
		client:      sender,
	})

	note := receiveMessage(t, peer)
	assert.NotNil(t, note.Notification, "expected a typing notification")
	assert.Equal(t, 1, note.Notification.Typing.UserId)
	assert.True(t, note.Notification.Typing.Started)

	// typing is fire-and-forget: the sender gets no acknowledgment
	assertNoMessage(t, sender)
}

func TestHandleTypingUnauthorizedIsSilent(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetFriendshipStatus", 1, 2).Return("", nil)

	cs := newTestChatServer(t, db)
	sender := newTestClient(t, cs, types.User{Id: 1, Username: "alice"})
	peer := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	cs.presence.Register(2, peer)

	cs.handleTyping(&ClientMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Typing:      &Typing{PeerId: 2, Started: true},
		UserId:      1,
		client:      sender,
	})

	assertNoMessage(t, sender)
	assertNoMessage(t, peer)
}

func TestHandleReadMarksAndNotifies(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetMessageById", 10).Return(database.Message{Id: 10, SenderId: 1, ReceiverId: 2}, nil)
	db.On("GetMessageById", 11).Return(database.Message{Id: 11, SenderId: 1, ReceiverId: 2}, nil)
	db.On("MarkMessageRead", 10, mock.AnythingOfType("time.Time")).Return(true, nil)
	db.On("MarkMessageRead", 11, mock.AnythingOfType("time.Time")).Return(true, nil)

	cs := newTestChatServer(t, db)
	reader := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	originalSender := newTestClient(t, cs, types.User{Id: 1, Username: "alice"})
	cs.presence.Register(2, reader)
	cs.presence.Register(1, originalSender)

	cs.handleRead(&ClientMessage{
		BaseMessage: BaseMessage{Id: 20, Timestamp: Now()},
		Read:        &Read{PeerId: 1, MessageIds: []int{10, 11}},
		UserId:      2,
		client:      reader,
	})

	ack := receiveMessage(t, reader)
	assert.Equal(t, http.StatusOK, ack.Response.ResponseCode)
	assert.Equal(t, 20, ack.Id)

	receipt := receiveMessage(t, originalSender)
	assert.NotNil(t, receipt.Notification.ReadReceipt, "expected the sender to get a read receipt")
	assert.Equal(t, 2, receipt.Notification.ReadReceipt.ReaderId)
	assert.ElementsMatch(t, []int{10, 11}, receipt.Notification.ReadReceipt.MessageIds)
}

func TestHandleReadIdempotent(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetMessageById", 10).Return(database.Message{Id: 10, SenderId: 1, ReceiverId: 2}, nil)
	db.On("MarkMessageRead", 10, mock.AnythingOfType("time.Time")).Return(false, nil)

	cs := newTestChatServer(t, db)
	reader := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	originalSender := newTestClient(t, cs, types.User{Id: 1, Username: "alice"})
	cs.presence.Register(1, originalSender)

	cs.handleRead(&ClientMessage{
		BaseMessage: BaseMessage{Id: 21, Timestamp: Now()},
		Read:        &Read{PeerId: 1, MessageIds: []int{10}},
		UserId:      2,
		client:      reader,
	})

	ack := receiveMessage(t, reader)
	assert.Equal(t, http.StatusOK, ack.Response.ResponseCode, "expected re-marking an already-read message to still succeed")

	// no rows changed, so no duplicate receipt goes out
	assertNoMessage(t, originalSender)
}

func TestHandleReadUnauthorized(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetMessageById", 10).Return(database.Message{Id: 10, SenderId: 1, ReceiverId: 2}, nil)
	db.On("GetMessageById", 11).Return(database.Message{Id: 11, SenderId: 1, ReceiverId: 9}, nil)

	cs := newTestChatServer(t, db)
	reader := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})

	cs.handleRead(&ClientMessage{
		BaseMessage: BaseMessage{Id: 22, Timestamp: Now()},
		Read:        &Read{PeerId: 1, MessageIds: []int{10, 11}},
		UserId:      2,
		client:      reader,
	})

	resp := receiveMessage(t, reader)
	assert.Equal(t, http.StatusForbidden, resp.Response.ResponseCode)

	// one unauthorized id fails the whole batch before any row is touched
	db.AssertNotCalled(t, "MarkMessageRead", mock.Anything, mock.Anything)
}

func TestHandleReadValidation(t *testing.T) {
	db := &database.MockChatRepository{}
	cs := newTestChatServer(t, db)
	reader := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})

	cs.handleRead(&ClientMessage{
		BaseMessage: BaseMessage{Id: 23, Timestamp: Now()},
		Read:        &Read{PeerId: 1},
		UserId:      2,
		client:      reader,
	})

	resp := receiveMessage(t, reader)
	assert.Equal(t, http.StatusBadRequest, resp.Response.ResponseCode)
	db.AssertNotCalled(t, "GetMessageById", mock.Anything)
}

func TestNotifyPresenceChange(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetAcceptedFriendIds", 1).Return([]int{2, 3}, nil)

	cs := newTestChatServer(t, db)
	friend := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	stranger := newTestClient(t, cs, types.User{Id: 4, Username: "mallory"})
	cs.presence.Register(2, friend)
	cs.presence.Register(4, stranger)

	cs.notifyPresenceChange(1, true)

	note := receiveMessage(t, friend)
	assert.NotNil(t, note.Notification.Presence, "expected a presence notification")
	assert.Equal(t, 1, note.Notification.Presence.UserId)
	assert.True(t, note.Notification.Presence.Online)
	assert.Nil(t, note.Notification.Presence.LastSeen, "expected no last-seen while online")

	// presence is only visible to accepted friends
	assertNoMessage(t, stranger)
}

func TestNotifyPresenceChangeOffline(t *testing.T) {
	db := &database.MockChatRepository{}
	db.On("GetAcceptedFriendIds", 1).Return([]int{2}, nil)

	cs := newTestChatServer(t, db)
	friend := newTestClient(t, cs, types.User{Id: 2, Username: "bob"})
	cs.presence.Register(2, friend)

	user := newTestClient(t, cs, types.User{Id: 1, Username: "alice"})
	cs.presence.Register(1, user)
	cs.presence.Deregister(1, user)

	cs.notifyPresenceChange(1, false)

	note := receiveMessage(t, friend)
	assert.False(t, note.Notification.Presence.Online)
	assert.NotNil(t, note.Notification.Presence.LastSeen, "expected a last-seen timestamp once offline")
}
