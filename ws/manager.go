package ws

import (
	"context"
	"sync"

	"artlink_backend/internal/logger"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
)

// Manager is the connection registry. Every authenticated connection sits in
// its user group (user:{id}) and may join conversation groups on demand. A
// user can hold several simultaneous connections; group broadcasts reach all
// of them. Events arrive over the Bus, so producers never talk to sockets
// directly.
type Manager struct {
	mu     sync.RWMutex
	users  map[string]map[string]*Client // userID -> connID -> client
	topics map[string]map[string]*Client // topic  -> connID -> client

	register   chan *Client
	unregister chan *Client

	eventBus bus.Bus

	// OnDisconnect runs after a connection is fully removed; wiring points
	// it at typing-state cleanup.
	OnDisconnect func(userID string, joinedConversations []string)
}

func NewManager(eventBus bus.Bus) *Manager {
	return &Manager{
		users:      make(map[string]map[string]*Client),
		topics:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		eventBus:   eventBus,
	}
}

// Run processes register/unregister traffic and subscribes to the bus.
func (m *Manager) Run(ctx context.Context) {
	if err := m.eventBus.StartForwarder(ctx, m.forward); err != nil {
		logger.Fatal("failed to subscribe to event bus", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		}
	}
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	if m.users[client.UserID] == nil {
		m.users[client.UserID] = make(map[string]*Client)
	}
	m.users[client.UserID][client.ID] = client

	userTopic := realtime.UserTopic(client.UserID)
	if m.topics[userTopic] == nil {
		m.topics[userTopic] = make(map[string]*Client)
	}
	m.topics[userTopic][client.ID] = client
	total := len(m.users[client.UserID])
	m.mu.Unlock()

	logger.Info("client registered", "user_id", client.UserID, "conn_id", client.ID, "user_connections", total)
}

// removeClient deterministically strips the connection from every group it
// joined, then fires the disconnect hook so typing state cannot leak.
func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	conns, ok := m.users[client.UserID]
	if !ok || conns[client.ID] == nil {
		m.mu.Unlock()
		return
	}
	delete(conns, client.ID)
	if len(conns) == 0 {
		delete(m.users, client.UserID)
	}

	for topic, members := range m.topics {
		if _, joined := members[client.ID]; joined {
			delete(members, client.ID)
			if len(members) == 0 {
				delete(m.topics, topic)
			}
		}
	}
	m.mu.Unlock()

	client.closeSend()
	joined := client.JoinedConversations()
	logger.Info("client unregistered", "user_id", client.UserID, "conn_id", client.ID)

	if m.OnDisconnect != nil {
		m.OnDisconnect(client.UserID, joined)
	}
}

// JoinTopic adds the connection to a conversation group.
func (m *Manager) JoinTopic(client *Client, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.topics[topic] == nil {
		m.topics[topic] = make(map[string]*Client)
	}
	m.topics[topic][client.ID] = client
}

func (m *Manager) LeaveTopic(client *Client, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.topics[topic]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(m.topics, topic)
		}
	}
}

// forward delivers one bus event to the local members of its topic.
// Delivery is at-most-once per socket: a member whose send buffer is full is
// disconnected rather than allowed to stall the rest.
func (m *Manager) forward(event bus.Event) {
	m.mu.RLock()
	members := m.topics[event.Topic]
	clients := make([]*Client, 0, len(members))
	for _, c := range members {
		if event.Exclude != "" && c.UserID == event.Exclude {
			continue
		}
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	out := OutboundEvent{Type: event.Type, Data: event.Data}
	for _, client := range clients {
		if client.trySend(out) {
			continue
		}
		// Full buffer or a connection mid-teardown; this socket cannot take
		// the event, so the event is dropped and the connection goes away.
		logger.Warn("undeliverable event, dropping client", "user_id", client.UserID, "conn_id", client.ID)
		go func(c *Client) { m.unregister <- c }(client)
	}
}

// IsUserConnected reports whether the user holds a live connection on this
// node; the fan-out engine uses it to decide on device pushes.
func (m *Manager) IsUserConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users[userID]) > 0
}

// ConnectionCount reports the number of live connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, conns := range m.users {
		total += len(conns)
	}
	return total
}

// Register and Unregister hand a client to the Run loop.
func (m *Manager) Register(client *Client) {
	m.register <- client
}

func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}
