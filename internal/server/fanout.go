package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agrolink/chat-service/internal/database"
)

// handleTyping forwards a typing indicator to the target's live
// connections. Typing is best-effort: unauthorized or offline targets just
// drop the event, nothing is acknowledged or retried.
func (cs *ChatServer) handleTyping(msg *ClientMessage) {
	typing := msg.Typing

	target, err := newTarget(typing.PeerId, typing.GroupId)
	if err != nil {
		cs.stats.Incr(StatEventsDropped)
		return
	}

	if err := cs.gate.Authorize(context.Background(), msg.UserId, target, Intent{}); err != nil {
		cs.stats.Incr(StatEventsDropped)
		return
	}

	delivered := cs.router.Deliver(msg.UserId, target, &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Notification: &Notification{
			Typing: &TypingNotification{
				UserId:  msg.UserId,
				PeerId:  typing.PeerId,
				GroupId: typing.GroupId,
				Started: typing.Started,
			},
		},
		SkipClient: msg.client,
	})
	if delivered == 0 {
		cs.stats.Incr(StatEventsDropped)
	}
}

// handleRead marks the named messages as read and notifies their senders.
// Every id is authorized before any row is touched, so a request naming a
// message the requester never received has no effect at all. Marking is
// idempotent; already-read messages produce no receipt.
func (cs *ChatServer) handleRead(msg *ClientMessage) {
	read := msg.Read

	if _, err := newTarget(read.PeerId, read.GroupId); err != nil {
		msg.client.queueMessage(ErrValidation(msg.Id, err.Error()))
		return
	}

	if len(read.MessageIds) == 0 {
		msg.client.queueMessage(ErrValidation(msg.Id, "message_ids required"))
		return
	}

	ctx := context.Background()
	rows := make([]database.Message, 0, len(read.MessageIds))
	for _, id := range read.MessageIds {
		row, err := cs.db.GetMessageById(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				msg.client.queueMessage(ErrDenied(msg.Id, ErrNotAuthorizedToMarkRead))
			} else {
				cs.log.Println("get message:", err)
				msg.client.queueMessage(ErrInternalError(msg.Id))
			}
			return
		}

		if err := cs.gate.CanMarkRead(ctx, msg.UserId, row); err != nil {
			if isDenial(err) {
				msg.client.queueMessage(ErrDenied(msg.Id, err))
			} else {
				cs.log.Println("authorize mark read:", err)
				msg.client.queueMessage(ErrInternalError(msg.Id))
			}
			return
		}

		rows = append(rows, row)
	}

	readAt := Now()
	marked := make(map[int][]int)
	for _, row := range rows {
		changed, err := cs.db.MarkMessageRead(row.Id, readAt)
		if err != nil {
			cs.log.Println("mark message read:", err)
			msg.client.queueMessage(ErrPersistenceFailure(msg.Id))
			return
		}

		if changed {
			marked[row.SenderId] = append(marked[row.SenderId], row.Id)
		}
	}

	msg.client.queueMessage(NoErrOK(msg.Id, nil))

	for senderId, messageIds := range marked {
		receipt := &ServerMessage{
			BaseMessage: BaseMessage{
				Timestamp: readAt,
			},
			Notification: &Notification{
				ReadReceipt: &ReadReceipt{
					ReaderId:   msg.UserId,
					PeerId:     read.PeerId,
					GroupId:    read.GroupId,
					MessageIds: messageIds,
					ReadAt:     readAt,
				},
			},
			SkipClient: msg.client,
		}

		for _, c := range cs.presence.Lookup(senderId) {
			if c == receipt.SkipClient {
				continue
			}
			c.queueMessage(receipt)
		}
	}
}

// notifyPresenceChange pushes an online/offline event to the user's
// accepted friends and to the user's own other devices.
func (cs *ChatServer) notifyPresenceChange(userId int, online bool) {
	friendIds, err := cs.db.GetAcceptedFriendIds(userId)
	if err != nil {
		cs.log.Println("accepted friends lookup:", err)
		return
	}

	presence := &Presence{
		UserId: userId,
		Online: online,
	}
	if lastSeen, ok := cs.presence.LastSeen(userId); ok {
		presence.LastSeen = &lastSeen
	}

	note := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Notification: &Notification{
			Presence: presence,
		},
	}

	for _, id := range append(friendIds, userId) {
		for _, c := range cs.presence.Lookup(id) {
			c.queueMessage(note)
		}
	}
}
