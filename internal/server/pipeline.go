package server

import (
	"context"
	"errors"

	"github.com/agrolink/chat-service/internal/database"
	"github.com/agrolink/chat-service/internal/types"
)

// handlePublish runs one message send end-to-end: validate, classify,
// authorize, persist, acknowledge, deliver. It executes on the sending
// connection's read goroutine, so sends from one connection are processed
// in the order they arrived. Persistence strictly precedes delivery; a
// recipient that misses the live push finds the message in history.
func (cs *ChatServer) handlePublish(msg *ClientMessage) {
	pub := msg.Publish

	target, err := newTarget(pub.PeerId, pub.GroupId)
	if err != nil {
		cs.reject(msg, ErrValidation(msg.Id, err.Error()))
		return
	}

	if pub.Content == "" && pub.Attachment == nil {
		cs.reject(msg, ErrValidation(msg.Id, "content or attachment required"))
		return
	}

	if _, ok := messageKinds[pub.Kind]; !ok {
		cs.reject(msg, ErrValidation(msg.Id, "unrecognized message kind"))
		return
	}

	if err := cs.gate.Authorize(context.Background(), msg.UserId, target, classifyIntent(pub)); err != nil {
		if isDenial(err) {
			cs.reject(msg, ErrDenied(msg.Id, err))
		} else {
			cs.log.Println("authorize:", err)
			cs.reject(msg, ErrInternalError(msg.Id))
		}
		return
	}

	row := database.Message{
		SenderId:   msg.UserId,
		ReceiverId: target.PeerId,
		GroupId:    target.GroupId,
		Content:    pub.Content,
		Kind:       pub.Kind,
		PostId:     pub.PostId,
		CreatedAt:  msg.Timestamp,
	}
	if pub.Attachment != nil {
		row.AttachmentUrl = pub.Attachment.Url
		row.AttachmentName = pub.Attachment.Name
		row.AttachmentSize = pub.Attachment.Size
		row.AttachmentMime = pub.Attachment.MimeType
	}

	id, err := cs.db.CreateMessage(row)
	if err != nil {
		cs.log.Println("create message:", err)
		cs.reject(msg, ErrPersistenceFailure(msg.Id))
		return
	}

	msg.client.queueMessage(NoErrOK(msg.Id, map[string]any{"message_id": id}))

	cs.router.Deliver(msg.UserId, target, &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: msg.Timestamp,
		},
		Message: &types.Message{
			Id:         id,
			SenderId:   msg.UserId,
			ReceiverId: target.PeerId,
			GroupId:    target.GroupId,
			Content:    pub.Content,
			Kind:       pub.Kind,
			Attachment: pub.Attachment,
			PostId:     pub.PostId,
			Timestamp:  msg.Timestamp,
		},
		SkipClient: msg.client,
	})

	cs.stats.Incr(StatMessagesSent)
}

func (cs *ChatServer) reject(msg *ClientMessage, resp *ServerMessage) {
	msg.client.queueMessage(resp)
	cs.stats.Incr(StatMessagesRejected)
}

func isDenial(err error) bool {
	for _, denial := range []error{
		ErrNotFriends,
		ErrNotAMember,
		ErrInvalidRecipient,
		ErrPostNotOwnedByRecipient,
		ErrNotAuthorizedToMarkRead,
	} {
		if errors.Is(err, denial) {
			return true
		}
	}
	return false
}
