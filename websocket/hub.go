package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Hub fans notification events out to connected clients. Each user may hold
// several connections (phone + web); delivery is best-effort.
type Event struct {
	UserID uuid.UUID       `json:"-"`
	Type   string          `json:"type"`
	Title  string          `json:"title"`
	Body   string          `json:"body"`
	Data   json.RawMessage `json:"data,omitempty"`
}

var (
	mu         sync.RWMutex
	clients    = make(map[uuid.UUID][]*websocket.Conn)
	broadcast  = make(chan Event, 64)
	register   = make(chan registration)
	unregister = make(chan registration)
)

type registration struct {
	userID uuid.UUID
	conn   *websocket.Conn
}

func Register(userID uuid.UUID, conn *websocket.Conn) {
	register <- registration{userID: userID, conn: conn}
}

func Unregister(userID uuid.UUID, conn *websocket.Conn) {
	unregister <- registration{userID: userID, conn: conn}
}

// Publish queues an event for delivery; it never blocks the caller.
func Publish(event Event) {
	select {
	case broadcast <- event:
	default:
		log.Println("Websocket broadcast queue full, dropping event")
	}
}

func RunHub() {
	for {
		select {
		case reg := <-register:
			mu.Lock()
			clients[reg.userID] = append(clients[reg.userID], reg.conn)
			mu.Unlock()

		case reg := <-unregister:
			mu.Lock()
			conns := clients[reg.userID]
			for i, c := range conns {
				if c == reg.conn {
					clients[reg.userID] = append(conns[:i], conns[i+1:]...)
					break
				}
			}
			if len(clients[reg.userID]) == 0 {
				delete(clients, reg.userID)
			}
			mu.Unlock()

		case event := <-broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal websocket event: %v", err)
				continue
			}
			mu.RLock()
			conns := clients[event.UserID]
			mu.RUnlock()
			for _, conn := range conns {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Printf("Failed to push event to user %s: %v", event.UserID, err)
				}
			}
		}
	}
}
