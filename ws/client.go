package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"netowork_backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// IncomingMessage - команда от клиента
type IncomingMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// ActionHandler выполняет команды клиента от имени пользователя
type ActionHandler interface {
	HandleAction(ctx context.Context, userID int64, msg IncomingMessage) error
}

type Client struct {
	UserID int64

	conn    *websocket.Conn
	send    chan Envelope
	ctx     context.Context
	manager *WebSocketManager
	actions ActionHandler
}

func NewClient(ctx context.Context, userID int64, conn *websocket.Conn, manager *WebSocketManager, actions ActionHandler) *Client {
	return &Client{
		UserID:  userID,
		conn:    conn,
		send:    make(chan Envelope, sendBuffer),
		ctx:     ctx,
		manager: manager,
		actions: actions,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg IncomingMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				c.reply(Envelope{Event: EventError, Data: "Invalid message format"})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWithError(c.ctx, "WebSocket read error", err)
			}
			return
		}

		if err := c.actions.HandleAction(c.ctx, c.UserID, msg); err != nil {
			c.reply(Envelope{Event: EventError, Data: errorMessage(err)})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.CtxWithError(c.ctx, "WebSocket write error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply отвечает только этому клиенту; ответ через менеджер не идет
func (c *Client) reply(env Envelope) {
	c.manager.mu.RLock()
	defer c.manager.mu.RUnlock()
	if _, ok := c.manager.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.send <- env:
	default:
	}
}
