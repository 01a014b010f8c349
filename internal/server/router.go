package server

import (
	"log"

	"github.com/agrolink/chat-service/internal/database"
)

// ConversationRouter resolves a logical target to the live connections that
// must receive an event. Offline recipients are skipped; durability comes
// from persistence, not redelivery.
type ConversationRouter struct {
	presence *PresenceStore
	db       database.ChatRepository
	log      *log.Logger
}

func NewConversationRouter(presence *PresenceStore, db database.ChatRepository, logger *log.Logger) *ConversationRouter {
	return &ConversationRouter{
		presence: presence,
		db:       db,
		log:      logger,
	}
}

// Deliver queues msg on every resolved connection and returns the number of
// connections reached. The sender's other devices are included so
// multi-device state stays consistent; msg.SkipClient (normally the
// originating connection) is excluded.
func (r *ConversationRouter) Deliver(senderId int, target Target, msg *ServerMessage) int {
	conns := r.resolve(senderId, target)

	delivered := 0
	for _, c := range conns {
		if c == msg.SkipClient {
			continue
		}

		if c.queueMessage(msg) {
			delivered++
		}
	}
	return delivered
}

func (r *ConversationRouter) resolve(senderId int, target Target) map[string]*Client {
	conns := make(map[string]*Client)

	if target.IsGroup() {
		memberIds, err := r.db.GetGroupMemberIds(target.GroupId)
		if err != nil {
			r.log.Printf("resolve group %d members: %v", target.GroupId, err)
			return conns
		}

		for _, id := range memberIds {
			for _, c := range r.presence.Lookup(id) {
				conns[c.connId] = c
			}
		}
		return conns
	}

	for _, c := range r.presence.Lookup(target.PeerId) {
		conns[c.connId] = c
	}
	for _, c := range r.presence.Lookup(senderId) {
		conns[c.connId] = c
	}
	return conns
}
