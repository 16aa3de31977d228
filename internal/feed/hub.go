// Package feed fans out message inserts to websocket subscribers. Inserts
// arrive from PostgreSQL notifications; connections subscribe per room.
package feed

import (
	"context"

	"go.uber.org/zap"

	"github.com/mapleins/community/internal/stats"
)

// MembershipChecker decides whether a user may subscribe to a room.
type MembershipChecker interface {
	MembershipExists(ctx context.Context, roomId, userId string) (bool, error)
}

type Hub struct {
	log            *zap.Logger
	members        MembershipChecker
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	rooms          map[string]*Room
	registerChan   chan *Client
	deRegisterChan chan *Client
	subscribeChan  chan *ClientMessage
	unsubscribeCh  chan *ClientMessage
	publishChan    chan Event
	stop           chan struct{}
	done           chan struct{}
}

func NewHub(logger *zap.Logger, members MembershipChecker, statsProvider stats.StatsProvider) *Hub {
	return &Hub{
		log:            logger,
		members:        members,
		stats:          statsProvider,
		clients:        make(map[*Client]struct{}),
		rooms:          make(map[string]*Room),
		registerChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		subscribeChan:  make(chan *ClientMessage, 256),
		unsubscribeCh:  make(chan *ClientMessage, 256),
		publishChan:    make(chan Event, 512),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.registerChan:
			h.clients[c] = struct{}{}
			h.stats.Incr(stats.NumActiveClients)
			h.log.Debug("client registered", zap.String("user_id", c.userId))
		case c := <-h.deRegisterChan:
			h.removeClient(c)
		case msg := <-h.subscribeChan:
			h.handleSubscribe(msg)
		case msg := <-h.unsubscribeCh:
			h.handleUnsubscribe(msg)
		case ev := <-h.publishChan:
			h.handlePublish(ev)
		case <-h.stop:
			h.log.Info("shutting down feed hub", zap.Int("clients", len(h.clients)))
			for c := range h.clients {
				c.stopClient()
			}
			close(h.done)
			return
		}
	}
}

// Register adds a connection to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.registerChan <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deRegister(c *Client) {
	select {
	case h.deRegisterChan <- c:
	case <-h.done:
	}
}

// Publish hands an event to the hub without blocking. Events are dropped when
// the hub is saturated.
func (h *Hub) Publish(ev Event) {
	select {
	case h.publishChan <- ev:
	default:
		h.log.Warn("publish channel full, dropping event", zap.String("room_id", ev.RoomId))
	}
}

func (h *Hub) Shutdown() {
	select {
	case <-h.done:
		return
	default:
	}
	close(h.stop)
	<-h.done
}

func (h *Hub) handleSubscribe(msg *ClientMessage) {
	c := msg.client
	if _, ok := h.clients[c]; !ok {
		return
	}

	roomId := msg.Subscribe.RoomId
	r, ok := h.rooms[roomId]
	if !ok {
		r = newRoom(roomId, h.log)
		h.rooms[roomId] = r
	}

	if r.addClient(c) {
		c.rooms[roomId] = struct{}{}
		h.stats.Incr(stats.NumActiveSubscriptions)
	}

	c.queueMessage(NoErrOK(msg.Id, map[string]any{"room_id": roomId}))
}

func (h *Hub) handleUnsubscribe(msg *ClientMessage) {
	c := msg.client
	roomId := msg.Unsubscribe.RoomId
	if !h.leave(c, roomId) {
		c.queueMessage(ErrRoomNotFound(msg.Id))
		return
	}

	c.queueMessage(NoErrOK(msg.Id, map[string]any{"room_id": roomId}))
}

func (h *Hub) leave(c *Client, roomId string) bool {
	r, ok := h.rooms[roomId]
	if !ok || !r.removeClient(c) {
		return false
	}

	delete(c.rooms, roomId)
	h.stats.Decr(stats.NumActiveSubscriptions)
	if r.empty() {
		delete(h.rooms, roomId)
	}

	return true
}

func (h *Hub) handlePublish(ev Event) {
	h.stats.Incr(stats.NumFeedEvents)

	r, ok := h.rooms[ev.RoomId]
	if !ok {
		return
	}

	for _, c := range r.broadcast(EventMessage(ev)) {
		h.log.Warn("dropping slow client", zap.String("user_id", c.userId))
		h.removeClient(c)
		c.stopClient()
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	for roomId := range c.rooms {
		h.leave(c, roomId)
	}
	delete(h.clients, c)
	h.stats.Decr(stats.NumActiveClients)
	h.log.Debug("client removed", zap.String("user_id", c.userId))
}
