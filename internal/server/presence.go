package server

import (
	"sync"
	"time"
)

// PresenceStore is the process-wide record of which users are reachable and
// through which connections. A user may hold several live connections at
// once (one per device); entries track the full set keyed by connection id.
// State is rebuilt from zero on restart.
type PresenceStore struct {
	mu    sync.RWMutex
	users map[int]*presenceEntry
}

type presenceEntry struct {
	// mu serializes register/deregister for this user
	mu       sync.Mutex
	conns    map[string]*Client
	online   bool
	lastSeen time.Time
}

func NewPresenceStore() *PresenceStore {
	return &PresenceStore{
		users: make(map[int]*presenceEntry),
	}
}

func (ps *PresenceStore) entry(userId int) *presenceEntry {
	ps.mu.RLock()
	e, ok := ps.users[userId]
	ps.mu.RUnlock()
	if ok {
		return e
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if e, ok = ps.users[userId]; !ok {
		e = &presenceEntry{conns: make(map[string]*Client)}
		ps.users[userId] = e
	}
	return e
}

// Register adds a connection handle for the user and reports whether the
// user just came online (first live connection).
func (ps *PresenceStore) Register(userId int, c *Client) bool {
	e := ps.entry(userId)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.conns[c.connId] = c
	if !e.online {
		e.online = true
		return true
	}
	return false
}

// Deregister removes one connection handle and reports whether the user
// went offline (no handles remain). Last-seen is recorded at that moment.
func (ps *PresenceStore) Deregister(userId int, c *Client) bool {
	ps.mu.RLock()
	e, ok := ps.users[userId]
	ps.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.conns, c.connId)
	if len(e.conns) == 0 && e.online {
		e.online = false
		e.lastSeen = Now()
		return true
	}
	return false
}

// Lookup returns the user's live connections, empty when offline. The
// caller falls back to history-fetch delivery for offline users.
func (ps *PresenceStore) Lookup(userId int) []*Client {
	ps.mu.RLock()
	e, ok := ps.users[userId]
	ps.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	conns := make([]*Client, 0, len(e.conns))
	for _, c := range e.conns {
		conns = append(conns, c)
	}
	return conns
}

func (ps *PresenceStore) IsOnline(userId int) bool {
	ps.mu.RLock()
	e, ok := ps.users[userId]
	ps.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// LastSeen returns when the user last went offline. The second return is
// false while the user is online or was never seen.
func (ps *PresenceStore) LastSeen(userId int) (time.Time, bool) {
	ps.mu.RLock()
	e, ok := ps.users[userId]
	ps.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.online || e.lastSeen.IsZero() {
		return time.Time{}, false
	}
	return e.lastSeen, true
}
