package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mapleins/community/internal/feed"
	"github.com/mapleins/community/internal/roomview"
	"github.com/mapleins/community/internal/types"
)

const (
	subscribeRequestId = 1
	handshakeTimeout   = 10 * time.Second
)

type subscription struct {
	conn      *websocket.Conn
	roomId    string
	events    chan types.Message
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func (c *Client) wsURL() string {
	u := *c.BaseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}

// Subscribe opens a websocket, subscribes to roomId and waits for the
// server's answer before returning.
func (c *Client) Subscribe(ctx context.Context, roomId string) (roomview.Subscription, error) {
	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Cookie", (&http.Cookie{Name: tokenCookie, Value: token}).String())
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.wsURL(), header)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{StatusCode: resp.StatusCode}
		}
		return nil, errors.Wrap(err, "dial live feed")
	}

	req := feed.ClientMessage{
		BaseMessage: feed.BaseMessage{Id: subscribeRequestId, Timestamp: time.Now().UTC()},
		Subscribe:   &feed.Subscribe{RoomId: roomId},
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "send subscribe")
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	} else {
		conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	}
	for {
		var msg feed.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "read subscribe response")
		}
		if msg.Response == nil || msg.Id != subscribeRequestId {
			continue
		}
		if msg.Response.ResponseCode != http.StatusOK {
			conn.Close()
			return nil, &StatusError{StatusCode: msg.Response.ResponseCode, Message: msg.Response.Error}
		}
		break
	}
	conn.SetReadDeadline(time.Time{})

	sub := &subscription{
		conn:   conn,
		roomId: roomId,
		events: make(chan types.Message, 64),
		done:   make(chan struct{}),
	}
	go sub.read()

	return sub, nil
}

func (s *subscription) read() {
	defer close(s.events)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}

		var msg feed.ServerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Event == nil || msg.Event.Type != feed.EventInsert || msg.Event.RoomId != s.roomId {
			continue
		}
		select {
		case s.events <- msg.Event.Message:
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Events() <-chan types.Message {
	return s.events
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
