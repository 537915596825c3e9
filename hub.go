package main

import "sync"

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and fans outbound events to match
// rosters. It implements RoomBroadcaster for the tick loops.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	conns      map[string]*Client // connID -> client
	register   chan *Client
	unregister chan *Client

	manager *MatchManager
	loops   *LoopRunner

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	// Auth & DB
	db   *DB
	auth *Auth
}

// NewHub creates a new Hub. The loop runner is attached afterwards because
// it broadcasts through the hub.
func NewHub(manager *MatchManager, db *DB) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		conns:      make(map[string]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		manager:    manager,
		ipConns:    make(map[string]int),
		db:         db,
		auth:       NewAuth(db),
	}
}

// SetLoops attaches the tick loop runner
func (h *Hub) SetLoops(loops *LoopRunner) {
	h.loops = loops
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.conns[client.connID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				delete(h.conns, client.connID)
				close(client.send)
			}
			h.mu.Unlock()
			h.handleDisconnect(client.connID)
		}
	}
}

// handleDisconnect removes the player from their match. Idempotent: a
// connection with no match is a no-op. Stops the match loop exactly once
// when the roster empties.
func (h *Hub) handleDisconnect(connID string) {
	m := h.manager.LeaveMatch(connID)
	if m == nil {
		return
	}
	conns := h.manager.RosterConns(m.Code)
	if len(conns) == 0 {
		if h.loops != nil {
			h.loops.Stop(m.Code)
		}
		h.manager.RemoveMatch(m.Code)
		return
	}
	if snap, ok := h.manager.Snapshot(m.Code); ok {
		h.ToConns(conns, Envelope{T: MsgMatchUpdate, Data: snap})
	}
}

// ToConn sends a JSON envelope to one connection
func (h *Hub) ToConn(connID string, env Envelope) {
	h.mu.RLock()
	client := h.conns[connID]
	h.mu.RUnlock()
	if client != nil {
		client.SendJSON(env)
	}
}

// ToConns sends a JSON envelope to a recipient list
func (h *Hub) ToConns(conns []string, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, connID := range conns {
		if client := h.conns[connID]; client != nil {
			client.SendJSON(env)
		}
	}
}

// StateToConns sends a pre-encoded snapshot as a binary message.
// Fire-and-forget: slow clients drop frames rather than delaying the tick.
func (h *Hub) StateToConns(conns []string, state []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, connID := range conns {
		if client := h.conns[connID]; client != nil {
			client.SendBinary(state)
		}
	}
}

// BroadcastToMatch sends an envelope to every connection in a match
func (h *Hub) BroadcastToMatch(code string, env Envelope) {
	h.ToConns(h.manager.RosterConns(code), env)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
