package feed

import "go.uber.org/zap"

// Room is the set of connections subscribed to one room's inserts. It is
// owned by the hub goroutine.
type Room struct {
	id      string
	clients map[*Client]struct{}
	log     *zap.Logger
}

func newRoom(id string, log *zap.Logger) *Room {
	return &Room{
		id:      id,
		clients: make(map[*Client]struct{}),
		log:     log.With(zap.String("room_id", id)),
	}
}

func (r *Room) addClient(c *Client) bool {
	if _, ok := r.clients[c]; ok {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

func (r *Room) removeClient(c *Client) bool {
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	return true
}

func (r *Room) empty() bool {
	return len(r.clients) == 0
}

// broadcast queues msg on every subscriber and returns the ones whose send
// queue was full.
func (r *Room) broadcast(msg *ServerMessage) []*Client {
	var slow []*Client
	for c := range r.clients {
		if !c.queueMessage(msg) {
			slow = append(slow, c)
		}
	}

	r.log.Debug("broadcast event", zap.Int("subscribers", len(r.clients)), zap.Int("dropped", len(slow)))
	return slow
}
