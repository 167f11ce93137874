package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxInboundMessage = 4096

// Client is one WebSocket connection. Only writePump writes to conn.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	key  clientKey
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(h *Hub, conn *websocket.Conn, key clientKey) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		key:    key,
		send:   make(chan []byte, h.sendBuffer),
		closed: make(chan struct{}),
	}
}

// enqueue reports false when the buffer is full
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.closed:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// readPump discards client frames and keeps the read deadline fresh on pongs
func (c *Client) readPump() {
	defer c.hub.unregister(c)

	pongWait := 2 * c.hub.pingInterval
	c.conn.SetReadLimit(maxInboundMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Realtime read failed", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-c.closed:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
