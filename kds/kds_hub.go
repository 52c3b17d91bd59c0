package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

const (
	defaultSendBuffer = 32
	defaultWriteWait  = 10 * time.Second
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Subscriber describes what a connected terminal wants to see. An empty
// Destination receives events of every station of the business.
type Subscriber struct {
	BusinessID  string
	Destination string
	Role        string
}

type client struct {
	conn *websocket.Conn
	sub  Subscriber
	send chan []byte
}

// Hub relays fulfillment events to connected station terminals. Each client
// has its own writer goroutine; Publish only queues and never touches a socket.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex

	sendBuffer int
	writeWait  time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*client),
		sendBuffer: defaultSendBuffer,
		writeWait:  defaultWriteWait,
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, sub Subscriber) {
	c := &client{conn: conn, sub: sub, send: make(chan []byte, h.sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	metrics.KdsClients.Set(float64(len(h.clients)))
	h.mutex.Unlock()

	go h.writePump(c)
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.remove(conn)
}

// remove must be called with the mutex held.
func (h *Hub) remove(conn *websocket.Conn) bool {
	c, ok := h.clients[conn]
	if !ok {
		return false
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
	metrics.KdsClients.Set(float64(len(h.clients)))
	return true
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithError(err).WithField("destination", c.sub.Destination).Error("Error sending message to client")
			h.mutex.Lock()
			if h.remove(c.conn) {
				metrics.KdsClientsEvicted.WithLabelValues("write_failed").Inc()
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Publish implements the service event sink.
func (h *Hub) Publish(_ context.Context, event models.Event) {
	switch e := event.(type) {
	case models.ItemStatusChanged:
		h.broadcast(Message{Event: e.Type(), Data: e}, func(sub Subscriber) bool {
			return sub.BusinessID == e.BusinessID &&
				(sub.Destination == "" || (e.KdsDestination != nil && *e.KdsDestination == sub.Destination))
		})
	case models.OrderItemsSubmitted:
		destinations := e.Destinations()
		h.broadcast(Message{Event: e.Type(), Data: e}, func(sub Subscriber) bool {
			if sub.BusinessID != e.BusinessID {
				return false
			}
			if sub.Destination == "" {
				return true
			}
			for _, d := range destinations {
				if d == sub.Destination {
					return true
				}
			}
			return false
		})
	}
}

// broadcast queues msg for every matching client. A client whose queue is full
// has stopped reading and is disconnected.
func (h *Hub) broadcast(msg Message, match func(Subscriber) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	queued, evicted := 0, 0
	for conn, c := range h.clients {
		if !match(c.sub) {
			continue
		}
		select {
		case c.send <- data:
			queued++
		default:
			h.remove(conn)
			evicted++
			metrics.KdsClientsEvicted.WithLabelValues("slow_consumer").Inc()
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   msg.Event,
		"clients": queued,
		"evicted": evicted,
	}).Debug("Broadcast message")
}
