package server

import (
	"context"
	"log"
	"sync"

	"github.com/agrolink/chat-service/internal/cache"
	"github.com/agrolink/chat-service/internal/database"
	"github.com/agrolink/chat-service/internal/stats"
)

const (
	StatActiveConnections = "ActiveConnections"
	StatOnlineUsers       = "OnlineUsers"
	StatMessagesSent      = "MessagesSent"
	StatMessagesRejected  = "MessagesRejected"
	StatEventsDropped     = "EventsDropped"
)

type ChatServer struct {
	log            *log.Logger
	db             database.ChatRepository
	stats          stats.StatsProvider
	presence       *PresenceStore
	gate           *AuthorizationGate
	router         *ConversationRouter
	clients        map[*Client]struct{}
	clientsLock    sync.Mutex
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	stop           chan struct{}
	done           chan struct{}
}

func NewChatServer(logger *log.Logger, db database.ChatRepository, authCache cache.Cache, statsProvider stats.StatsProvider) (*ChatServer, error) {
	presence := NewPresenceStore()

	cs := &ChatServer{
		log:            logger,
		db:             db,
		stats:          statsProvider,
		presence:       presence,
		gate:           NewAuthorizationGate(db, authCache, logger),
		router:         NewConversationRouter(presence, db, logger),
		clients:        make(map[*Client]struct{}),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	for _, name := range []string{
		StatActiveConnections,
		StatOnlineUsers,
		StatMessagesSent,
		StatMessagesRejected,
		StatEventsDropped,
	} {
		statsProvider.RegisterMetric(name)
	}

	return cs, nil
}

func (cs *ChatServer) Run() {
	for {
		select {
		case client := <-cs.RegisterChan:
			cs.log.Printf("adding connection from %q", client.user.Username)
			cs.addClient(client)
			cs.stats.Incr(StatActiveConnections)
			if cs.presence.Register(client.user.Id, client) {
				cs.stats.Incr(StatOnlineUsers)
				go cs.notifyPresenceChange(client.user.Id, true)
			}
		case client := <-cs.deRegisterChan:
			cs.log.Printf("removing connection from %q", client.user.Username)
			cs.removeClient(client)
			cs.stats.Decr(StatActiveConnections)
			if cs.presence.Deregister(client.user.Id, client) {
				cs.stats.Decr(StatOnlineUsers)
				go cs.notifyPresenceChange(client.user.Id, false)
			}
		case <-cs.stop:
			close(cs.done)
			return
		}
	}
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.RegisterChan <- c
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	cs.clients[c] = struct{}{}
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	delete(cs.clients, c)
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("received shutdown signal")

	cs.clientsLock.Lock()
	for c := range cs.clients {
		c.stopClient()
	}
	cs.clientsLock.Unlock()

	close(cs.stop)

	select {
	case <-cs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
