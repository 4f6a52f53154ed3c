package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one subscribed WebSocket client. TeamID is empty
// for spectators who only want game-wide events.
type Connection struct {
	GameID string
	TeamID string
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage targets either a whole game or a single team in it.
type BroadcastMessage struct {
	GameID  string
	TeamID  string // empty means every connection in the game
	Message *Message
}

// Hub manages WebSocket connections for games and implements the
// service-layer Broadcaster. Delivery is fire-and-forget: a slow client's
// buffer fills and messages are dropped rather than blocking the core.
type Hub struct {
	conns map[string]map[*Connection]struct{} // gameID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.GameID] == nil {
				h.conns[conn.GameID] = make(map[*Connection]struct{})
			}
			h.conns[conn.GameID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("client %s connected to game %s", conn.UserID, conn.GameID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.GameID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, conn.GameID)
					}
					log.Printf("client %s disconnected from game %s", conn.UserID, conn.GameID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.GameID] {
				if msg.TeamID != "" && conn.TeamID != msg.TeamID {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToGame sends a message to every connection subscribed to the
// game (implements service.Broadcaster).
func (h *Hub) BroadcastToGame(gameID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameID:  gameID,
		Message: &Message{Type: msgType, Payload: data},
	}
}

// BroadcastToTeam sends a message to the game connections belonging to
// one team (implements service.Broadcaster).
func (h *Hub) BroadcastToTeam(gameID, teamID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		GameID:  gameID,
		TeamID:  teamID,
		Message: &Message{Type: msgType, Payload: data},
	}
}
