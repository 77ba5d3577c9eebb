package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"turtlesoup/internal/model"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgStatus MessageType = "status"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType  `json:"type"`
	Payload model.Status `json:"payload"`
}

// Connection represents one subscribed WebSocket
type Connection struct {
	RoomID string
	Send   chan []byte

	// sent is the session and history length of the last snapshot
	// delivered; only touched by the hub goroutine.
	sentSession string
	sentLen     int
}

func NewConnection(roomID string) *Connection {
	return &Connection{
		RoomID:  roomID,
		Send:    make(chan []byte, 16),
		sentLen: -1,
	}
}

type delivery struct {
	roomID string
	to     *Connection // nil means every subscriber of roomID
	status model.Status
}

// Hub fans status snapshots out to the sockets watching each room. A
// connection never receives a snapshot with a shorter history than one it
// already got, so concurrent publishers cannot make a client's view shrink.
type Hub struct {
	rooms map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan delivery
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			if h.rooms[conn.RoomID] == nil {
				h.rooms[conn.RoomID] = make(map[*Connection]struct{})
			}
			h.rooms[conn.RoomID][conn] = struct{}{}
			log.Debug().Str("room", conn.RoomID).Int("subscribers", len(h.rooms[conn.RoomID])).Msg("socket subscribed")

		case conn := <-h.unregister:
			if conns, ok := h.rooms[conn.RoomID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.rooms, conn.RoomID)
					}
					log.Debug().Str("room", conn.RoomID).Msg("socket unsubscribed")
				}
			}

		case d := <-h.broadcast:
			data, err := json.Marshal(&Message{Type: MsgStatus, Payload: d.status})
			if err != nil {
				log.Error().Err(err).Str("room", d.roomID).Msg("encode status")
				continue
			}
			if d.to != nil {
				if _, ok := h.rooms[d.roomID][d.to]; ok {
					deliver(d.to, d.status, data)
				}
				continue
			}
			for conn := range h.rooms[d.roomID] {
				deliver(conn, d.status, data)
			}

		case <-h.done:
			for _, conns := range h.rooms {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.rooms = nil
			return
		}
	}
}

func deliver(conn *Connection, status model.Status, data []byte) {
	if status.SessionID == conn.sentSession && len(status.History) < conn.sentLen {
		return
	}
	select {
	case conn.Send <- data:
		conn.sentSession = status.SessionID
		conn.sentLen = len(status.History)
	default:
		// Drop message if buffer full; the client's next poll catches up
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// SendStatus queues a snapshot for a single connection
func (h *Hub) SendStatus(conn *Connection, status model.Status) {
	h.enqueue(delivery{roomID: conn.RoomID, to: conn, status: status})
}

// BroadcastStatus sends a snapshot to every socket in the room (implements service.Broadcaster)
func (h *Hub) BroadcastStatus(roomID string, status model.Status) {
	h.enqueue(delivery{roomID: roomID, status: status})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	case <-h.done:
	default:
		log.Warn().Str("room", d.roomID).Msg("hub backlog full, dropping status push")
	}
}

// Close disconnects every socket and stops the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
