package pairing

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event types pushed to subscribed tab/display clients.
const (
	EventDrawGenerated    = "DRAW_GENERATED"
	EventDrawDeleted      = "DRAW_DELETED"
	EventRoomUpdated      = "ROOM_UPDATED"
	EventRoundCompleted   = "ROUND_COMPLETED"
	EventStandingsUpdated = "STANDINGS_UPDATED"
	EventBreakAnnounced   = "BREAK_ANNOUNCED"
	EventChampionDecided  = "CHAMPION_DECIDED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// TournamentChannel names the hub channel carrying one tournament's events.
func TournamentChannel(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

type Client struct {
	ID       string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Channel  string
	isClosed bool
	mu       sync.Mutex
}

func NewClient(hub *Hub, conn *websocket.Conn, channel string) *Client {
	return &Client{
		ID:      uuid.NewString(),
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Channel: channel,
	}
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Channel string      `json:"channel,omitempty"`
}

// Hub fans engine events out to websocket subscribers, one channel per
// tournament.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	channels   map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		channels:   make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.channels[client.Channel]; !ok {
				h.channels[client.Channel] = make(map[*Client]bool)
			}
			h.channels[client.Channel][client] = true
			log.Printf("Client %s subscribed to %s (%d subscribers)", client.ID, client.Channel, len(h.channels[client.Channel]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.channels[client.Channel]; ok {
				if subscribers[client] {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.channels, client.Channel)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToChannel sends an event to every subscriber of a channel.
// Slow subscribers are skipped, never blocked on.
func (h *Hub) BroadcastToChannel(channel, eventType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.channels[channel]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(Message{Type: eventType, Payload: payload, Channel: channel})
	if err != nil {
		log.Printf("Error marshalling %s event for channel %s: %v", eventType, channel, err)
		return
	}

	for client := range subscribers {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			log.Printf("Client %s send buffer full for channel %s, skipping", client.ID, channel)
		}
		client.mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Subscribers are read-only; inbound messages are drained and ignored.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", c.ID, err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Client %s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
