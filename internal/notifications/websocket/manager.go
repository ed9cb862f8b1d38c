package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is the frame pushed to connected clients.
type Message struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Connection is one websocket client. A user may hold several (tabs).
type Connection struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan Message
}

// Manager tracks connections per user and routes event pushes to them.
type Manager struct {
	connections map[uint][]*Connection
	mu          sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewManager creates a new websocket manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[uint][]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades the request and starts the read/write pumps.
// The caller has already authenticated userID.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	connection := &Connection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan Message, 64),
	}

	m.mu.Lock()
	m.connections[userID] = append(m.connections[userID], connection)
	m.mu.Unlock()

	go m.readPump(connection)
	go m.writePump(connection)
	return nil
}

// readPump drains client frames and tears the connection down on close.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.unregister(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pushes queued messages and keeps the connection alive with pings.
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) unregister(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.connections[conn.UserID]
	for i, c := range conns {
		if c == conn {
			m.connections[conn.UserID] = append(conns[:i], conns[i+1:]...)
			close(conn.Send)
			break
		}
	}
	if len(m.connections[conn.UserID]) == 0 {
		delete(m.connections, conn.UserID)
	}
}

// SendToUser queues a message for every connection the user holds.
// Best effort: slow consumers are skipped.
func (m *Manager) SendToUser(userID uint, message Message) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conn := range m.connections[userID] {
		select {
		case conn.Send <- message:
		default:
		}
	}
}

// ConnectionCount returns the number of active connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, conns := range m.connections {
		count += len(conns)
	}
	return count
}

// Close drops every connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, conns := range m.connections {
		for _, conn := range conns {
			conn.Conn.Close()
			close(conn.Send)
		}
	}
	m.connections = make(map[uint][]*Connection)
}
