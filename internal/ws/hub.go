package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Client ties a websocket connection to the authenticated user behind it.
type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

// Hub routes real-time messages to connected users. Publishing to an
// offline user is a silent no-op; delivery carries no acknowledgement.
type Hub struct {
	clients    map[uuid.UUID]map[*websocket.Conn]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	direct     chan userMessage
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte),
		direct:     make(chan userMessage, 64),
	}
}

// Publish sends a payload to every connection of a single user. Safe to call
// for offline users.
func (h *Hub) Publish(userID uuid.UUID, payload interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws: marshal publish payload: %v", err)
		return
	}
	h.direct <- userMessage{userID: userID, payload: msg}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*websocket.Conn]bool)
			}
			h.clients[client.UserID][client.Conn] = true
			h.mutex.Unlock()
			log.Printf("ws: client connected (user %s)", client.UserID)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client.Conn]; ok {
					delete(conns, client.Conn)
					client.Conn.Close()
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mutex.Unlock()

		case msg := <-h.direct:
			h.mutex.Lock()
			for conn := range h.clients[msg.userID] {
				if err := conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					conn.Close()
					delete(h.clients[msg.userID], conn)
				}
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for _, conns := range h.clients {
				for conn := range conns {
					if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
						conn.Close()
						delete(conns, conn)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}
