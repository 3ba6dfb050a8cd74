package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType is the type of a feed message.
type MessageType string

const (
	// MessageArchiveChanged reports a file created, modified or removed
	// below the archive root.
	MessageArchiveChanged MessageType = "archive_changed"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type   MessageType `json:"type"`
	Path   string      `json:"path,omitempty"`
	Change string      `json:"change,omitempty"`
}

// Feed manages the WebSocket connections notified of archive changes.
type Feed struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader

	onConnect    func()
	onDisconnect func()
}

// NewFeed creates a new feed.
func NewFeed() *Feed {
	return &Feed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until
// the client disconnects.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()
	if f.onConnect != nil {
		f.onConnect()
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.remove(conn)
}

// Notify broadcasts an archive change to all clients.
func (f *Feed) Notify(path, change string) {
	f.broadcast(Message{Type: MessageArchiveChanged, Path: path, Change: change})
}

func (f *Feed) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	f.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			f.remove(client)
		}
	}
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	_, ok := f.clients[conn]
	delete(f.clients, conn)
	f.mu.Unlock()

	conn.Close()
	if ok && f.onDisconnect != nil {
		f.onDisconnect()
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close closes all client connections.
func (f *Feed) Close() {
	f.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	for _, client := range clients {
		f.remove(client)
	}
}
