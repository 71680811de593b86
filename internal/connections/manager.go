package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// TimeoutConfig holds the keepalive settings for push connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Manager tracks the open push connections of every conversation
type Manager struct {
	mu       sync.RWMutex
	conns    map[*websocket.Conn]string
	timeouts TimeoutConfig
}

func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		conns:    make(map[*websocket.Conn]string),
		timeouts: timeouts,
	}
}

// AddConnection registers conn as watching conversationID
func (m *Manager) AddConnection(conn *websocket.Conn, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn] = conversationID
}

func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.conns[conn]
	return ok
}

// GetConnectionCount returns the number of open connections
func (m *Manager) GetConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// ConversationConnectionCount returns how many connections watch one conversation
func (m *Manager) ConversationConnectionCount(conversationID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, id := range m.conns {
		if id == conversationID {
			n++
		}
	}
	return n
}

func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}

// CloseAll sends a going-away close frame to every connection and forgets them
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[*websocket.Conn]string)
	wait := m.timeouts.WriteWait
	m.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn, id := range conns {
		if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait)); err != nil {
			log.Debug().Err(err).Str("conversation_id", id).Msg("Failed to send close frame")
		}
		conn.Close()
	}

	if len(conns) > 0 {
		log.Info().Int("connections", len(conns)).Msg("Closed push connections")
	}
	return len(conns)
}
