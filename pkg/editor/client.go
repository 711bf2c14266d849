package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/justyntemme/webplug/pkg/channel"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// client is one connected GUI.
type client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	outbox chan []byte
	done   chan struct{}
	once   sync.Once
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		id:     uuid.New(),
		conn:   conn,
		outbox: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// offer queues a frame without waiting. It reports false when the outbox is
// full or the client is gone.
func (c *client) offer(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbox <- frame:
		return true
	default:
		return false
	}
}

// shutdown tells the peer the editor is going away, then closes.
func (c *client) shutdown() {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "editor closed"),
		time.Now().Add(writeWait))
	c.close()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readLoop hands every inbound frame to the editor until the connection fails.
func (e *Editor) readLoop(c *client) {
	defer e.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				e.log.Warn("client %s: read: %v", c.id, err)
			}
			return
		}
		if err := e.receive(c, data); errors.Is(err, channel.ErrClosed) {
			return
		}
	}
}

// writeLoop drains the outbox and keeps the connection alive with pings.
func (e *Editor) writeLoop(c *client, messageType int) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(messageType, frame); err != nil {
				e.log.Warn("client %s: write: %v", c.id, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
