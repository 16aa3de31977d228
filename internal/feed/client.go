package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingInterval    = (pongWait * 9) / 10
	maxMessageSize  = 1024
	membershipCheck = 3 * time.Second
)

type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	log      *zap.Logger
	userId   string
	send     chan *ServerMessage
	rooms    map[string]struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(userId string, conn *websocket.Conn, hub *Hub, l *zap.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		log:    l.With(zap.String("user_id", userId)),
		userId: userId,
		send:   make(chan *ServerMessage, 256),
		rooms:  make(map[string]struct{}),
		stop:   make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Debug("write exiting")
	}()

	for {
		select {
		case msg := <-c.send:
			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("failed to serialize message", zap.Error(err))
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Debug("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Warn("ws: read", zap.Error(err))
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug("error parsing message", zap.Error(err))
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		msg.UserId = c.userId
		msg.Timestamp = Now()

		switch {
		case msg.Subscribe != nil:
			c.subscribe(&msg)
		case msg.Unsubscribe != nil:
			c.forward(c.hub.unsubscribeCh, &msg)
		default:
			c.queueMessage(ErrInvalidMessage(msg.Id))
		}
	}
}

func (c *Client) subscribe(msg *ClientMessage) {
	roomId := strings.TrimSpace(msg.Subscribe.RoomId)
	if roomId == "" {
		c.queueMessage(ErrRoomNotFound(msg.Id))
		return
	}
	msg.Subscribe.RoomId = roomId

	ctx, cancel := context.WithTimeout(context.Background(), membershipCheck)
	defer cancel()

	ok, err := c.hub.members.MembershipExists(ctx, roomId, c.userId)
	if err != nil {
		c.log.Error("membership check", zap.String("room_id", roomId), zap.Error(err))
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	if !ok {
		c.queueMessage(ErrForbidden(msg.Id))
		return
	}

	c.forward(c.hub.subscribeChan, msg)
}

func (c *Client) forward(ch chan *ClientMessage, msg *ClientMessage) {
	select {
	case ch <- msg:
	case <-c.hub.done:
		c.queueMessage(ErrServiceUnavailable(msg.Id))
	default:
		c.log.Warn("hub channel full")
		c.queueMessage(ErrServiceUnavailable(msg.Id))
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Warn("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Warn("write message", zap.Error(err))
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.hub.deRegister(c)
	c.stopClient()
}
