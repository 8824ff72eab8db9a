package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lucidplay/crashgate/internal/hub"
	"github.com/lucidplay/crashgate/internal/identity"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers connect from arbitrary operator sites.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub         *hub.Hub
	provider    identity.Provider
	authTimeout time.Duration
	sendBuffer  int
}

func NewWSHandler(h *hub.Hub, provider identity.Provider, authTimeout time.Duration, sendBuffer int) *WSHandler {
	return &WSHandler{
		hub:         h,
		provider:    provider,
		authTimeout: authTimeout,
		sendBuffer:  sendBuffer,
	}
}

// Serve handles GET /ws: upgrades the transport and hands the connection
// to the hub, which enforces the authentication handshake.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err, "client_ip", c.ClientIP())
		return
	}
	hub.Serve(h.hub, conn, h.provider, h.authTimeout, h.sendBuffer)
}
