package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lucidplay/crashgate/internal/identity"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	defaultSendBuffer = 256
)

// outbound is one unit of work for the write pump. A frame with a close
// code writes its payload first, then the close frame, then tears the
// connection down; this is how the error-before-close ordering of a
// failed handshake is guaranteed through a single writer.
type outbound struct {
	payload     []byte
	closeCode   int
	closeReason string
}

// Client is one viewer connection. It starts unauthenticated and must
// present a valid token within the handshake window or it is closed with
// CloseCodeAuthRequired. Until then, no payload other than the auth
// message is processed.
type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	provider identity.Provider

	send chan outbound
	done chan struct{}

	mu          sync.Mutex
	authed      bool
	userID      string
	connectedAt time.Time

	authTimer *time.Timer
	closeOnce sync.Once
}

// Serve takes ownership of an accepted websocket connection: it arms the
// handshake timer and starts the read/write pumps.
func Serve(h *Hub, conn *websocket.Conn, provider identity.Provider, authTimeout time.Duration, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	c := &Client{
		conn:        conn,
		hub:         h,
		provider:    provider,
		send:        make(chan outbound, sendBuffer),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
	c.authTimer = time.AfterFunc(authTimeout, func() {
		c.fail("authentication timed out")
	})
	go c.writePump()
	go c.readPump()
	return c
}

// UserID returns the authenticated identity, or "" before the handshake
// completes.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Client) isAuthed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("viewer read failed", "error", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	if !c.isAuthed() {
		// A ping (or anything else) before authentication is not
		// processed and does not extend the deadline.
		if msg.Type != MessageTypeAuth {
			return
		}
		c.authenticate(msg.Token)
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.sendMessage(pongMessage())
	case MessageTypeAuth:
		// Already authenticated; nothing to do.
	default:
		c.sendMessage(errorMessage("unknown message type: " + msg.Type))
	}
}

func (c *Client) authenticate(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	userID, err := c.provider.Resolve(ctx, token)
	if err != nil {
		c.fail("authentication failed: invalid token")
		return
	}

	// Stop returns false when the deadline already fired; the failure
	// path owns the connection then.
	if !c.authTimer.Stop() {
		return
	}

	c.mu.Lock()
	c.authed = true
	c.userID = userID
	c.mu.Unlock()

	c.hub.add(c)
	c.sendMessage(readyMessage(userID))
}

// fail sends a typed error message, then the 4401 close frame, strictly
// in that order, and tears the connection down.
func (c *Client) fail(reason string) {
	raw, _ := json.Marshal(errorMessage(reason))
	frame := outbound{payload: raw, closeCode: CloseCodeAuthRequired, closeReason: reason}
	select {
	case c.send <- frame:
	default:
		c.teardown()
	}
}

func (c *Client) sendMessage(msg ServerMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal frame", "error", err)
		return
	}
	c.trySendRaw(raw)
}

// trySendRaw queues a pre-serialized frame without blocking. Returns false
// when the buffer is full.
func (c *Client) trySendRaw(raw []byte) bool {
	select {
	case <-c.done:
		return true
	case c.send <- outbound{payload: raw}:
		return true
	default:
		return false
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if len(f.payload) > 0 {
				if err := c.conn.WriteMessage(websocket.TextMessage, f.payload); err != nil {
					c.teardown()
					return
				}
			}
			if f.closeCode != 0 {
				msg := websocket.FormatCloseMessage(f.closeCode, f.closeReason)
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				c.teardown()
				return
			}
		}
	}
}

// closeSlow drops a consumer that cannot keep up with the broadcast rate.
func (c *Client) closeSlow() {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "send buffer overflow")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.teardown()
}

func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		c.authTimer.Stop()
		c.hub.remove(c)
		close(c.done)
		c.conn.Close()
	})
}
