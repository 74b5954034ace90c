package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans room updates out to connected websocket clients. Clients poll
// the HTTP API too; the hub is the push path so a vote by one player shows
// up on everyone's screen without waiting for the next poll.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastRequest
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	rooms      *RoomService
	log        *zap.Logger
}

type Client struct {
	hub        *Hub
	id         string
	socket     *websocket.Conn
	send       chan []byte
	roomID     string
	playerID   string
	playerName string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type broadcastRequest struct {
	roomID string
	data   []byte
}

func NewHub(rooms *RoomService, log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastRequest),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      rooms,
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Info("client connected",
				zap.String("clientId", client.id),
				zap.String("roomId", client.roomID),
				zap.String("playerId", client.playerID),
				zap.String("playerName", client.playerName))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("client disconnected",
					zap.String("clientId", client.id),
					zap.String("roomId", client.roomID),
					zap.String("playerId", client.playerID))
			}
			h.mutex.Unlock()

		case req := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if client.roomID != req.roomID {
					continue
				}
				select {
				case client.send <- req.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToRoom sends a typed message to every client of one room.
func (h *Hub) BroadcastToRoom(roomID, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		h.log.Error("failed to marshal broadcast", zap.Error(err))
		return
	}
	h.broadcast <- broadcastRequest{roomID: roomID, data: data}
}

// RegisterClient takes ownership of an upgraded connection and starts its
// read and write pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, roomID, playerID, playerName string) *Client {
	client := &Client{
		hub:        h,
		id:         uuid.NewString(),
		socket:     conn,
		send:       make(chan []byte, 256),
		roomID:     roomID,
		playerID:   playerID,
		playerName: playerName,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

// SendRoomState pushes the current room snapshot to a single client, used
// on connect and on explicit request so late joiners catch up immediately.
func (h *Hub) SendRoomState(client *Client) {
	room, err := h.rooms.GetState(context.Background(), client.roomID)
	if err != nil {
		h.log.Warn("state sync failed",
			zap.String("roomId", client.roomID),
			zap.Error(err))
		return
	}
	data, err := json.Marshal(Message{Type: "room_state", Payload: room})
	if err != nil {
		h.log.Error("failed to marshal room state", zap.Error(err))
		return
	}
	select {
	case client.send <- data:
	default:
		close(client.send)
		h.mutex.Lock()
		delete(h.clients, client)
		h.mutex.Unlock()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Warn("malformed websocket message",
				zap.String("clientId", c.id),
				zap.Error(err))
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.send <- data

	case "request_state":
		c.hub.SendRoomState(c)

	default:
		c.hub.log.Debug("ignoring websocket message",
			zap.String("type", msg.Type),
			zap.String("clientId", c.id))
	}
}
