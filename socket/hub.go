package socket

import (
	"encoding/json"
	"sync"

	"imagefinder/pkg/logger"
)

const (
	TrendingUpdateType = "TRENDING_UPDATE" // top search terms changed
	HistoryAppendType  = "HISTORY_APPEND"  // a new search was recorded for a user
)

// WSMessage is the envelope for everything pushed to dashboards. A message
// with a UserID is delivered only to that user's connections; without one it
// goes to every connected client.
type WSMessage struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type Hub struct {
	// Rooms groups connections by user; one user may have several tabs open.
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Rooms[client.UserID][client]; ok {
				delete(h.Rooms[client.UserID], client)
				close(client.Send)
				if len(h.Rooms[client.UserID]) == 0 {
					delete(h.Rooms, client.UserID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Collect recipients under the lock, send outside it.
			h.mu.Lock()
			var clientsToSend []*Client
			if msg.UserID == "" {
				for _, room := range h.Rooms {
					for client := range room {
						clientsToSend = append(clientsToSend, client)
					}
				}
			} else {
				for client := range h.Rooms[msg.UserID] {
					clientsToSend = append(clientsToSend, client)
				}
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging. Closing the connection makes its
					// readPump exit and unregister it without blocking the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Disconnecting.", client.UserID)
					client.Conn.Close()
				}
			}
		}
	}
}
