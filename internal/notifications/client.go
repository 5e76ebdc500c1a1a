package notifications

import (
	"log/slog"
	"sync"
	"time"

	"moodmate/internal/middleware"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Feed viewers never send data frames, only pongs and close frames.
	maxInboundBytes = 512
	sendBufferSize  = 64
)

// owner is the hub a client deregisters from when its connection ends.
type owner interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is one feed viewer's connection. Events arrive on Send; the hub
// closes Send when it drops the client.
type Client struct {
	// UserID is uuid.Nil for anonymous viewers.
	UserID uuid.UUID
	Send   chan []byte

	hub       owner
	conn      *websocket.Conn
	closeOnce sync.Once
}

func newClient(hub owner, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
		hub:    hub,
		conn:   conn,
	}
}

// Serve writes queued events and pings until the connection or the hub
// ends it. It blocks and always deregisters the client on return.
func (c *Client) Serve() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()
	c.readLoop()
	c.hub.UnregisterClient(c)
	<-done
}

// readLoop only exists to see pongs and notice disconnects.
func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("feed viewer disconnected",
					slog.String("hub", c.hub.Name()),
					slog.String("user_id", c.UserID.String()),
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind    = websocket.TextMessage
			message []byte
		)
		select {
		case msg, ok := <-c.Send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			message = msg
		case <-ping.C:
			kind = websocket.PingMessage
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, message); err != nil {
			return
		}
	}
}

// TrySend queues message without blocking and reports false when the
// client's buffer is full.
func (c *Client) TrySend(message []byte) bool {
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}
