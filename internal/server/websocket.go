package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
	"github.com/besuhoff/skyline-blaster-go/internal/protocol"
)

// WebsocketClient represents a connected client
type WebsocketClient struct {
	ID     string
	Name   string // from the auth token, if any
	Conn   *websocket.Conn
	Send   chan []byte
	Server *GameServer
	codec  protocol.Codec

	msgCount   int
	msgResetAt time.Time
}

func (c *WebsocketClient) readPump() {
	defer func() {
		select {
		case c.Server.unregister <- c:
		case <-c.Server.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Info("websocket read error", "id", c.ID, "error", err)
			}
			return
		}

		if !c.allowMessage(time.Now()) {
			slog.Warn("rate limit exceeded, disconnecting", "id", c.ID)
			return
		}

		msg, err := c.codec.Decode(data)
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownMessage) {
				slog.Debug("ignoring unknown message", "id", c.ID, "error", err)
			} else {
				slog.Debug("dropping malformed message", "id", c.ID, "error", err)
			}
			continue
		}

		select {
		case c.Server.inbound <- inboundMessage{client: c, msg: msg}:
		case <-c.Server.done:
			return
		}
	}
}

// allowMessage counts messages in one-second windows
func (c *WebsocketClient) allowMessage(now time.Time) bool {
	if now.After(c.msgResetAt) {
		c.msgCount = 0
		c.msgResetAt = now.Add(time.Second)
	}
	c.msgCount++
	return c.msgCount <= c.Server.maxMessagesPerSec
}

func (c *WebsocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(msgType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
