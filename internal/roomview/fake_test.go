package roomview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mapleins/community/internal/types"
)

var errDisconnected = errors.New("connection lost")

type fakePlatform struct {
	mu sync.Mutex

	userId   string
	signedIn bool
	profile  *types.Profile
	senders  map[string]types.Sender
	members  map[string]bool
	rooms    map[string]types.Room
	history  map[string][]types.Message
	roomErr  error

	// block holds Messages for a room until the channel is closed
	block          map[string]chan struct{}
	messagesCalled chan string
	messageCalls   int

	batchCalls  int
	singleCalls int

	// sendersGate holds batch lookups until the channel is closed
	sendersGate   chan struct{}
	sendersCalled chan struct{}

	sendErr   error
	sendCalls int
	sendGate  chan struct{}
	nextId    int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		userId:   "me",
		signedIn: true,
		profile:  &types.Profile{Id: "me", Username: "asha", DisplayName: "Asha"},
		senders: map[string]types.Sender{
			"me": {Id: "me", Username: "asha", DisplayName: "Asha"},
			"u2": {Id: "u2", Username: "ravi", FullName: "Ravi Singh"},
		},
		members:        map[string]bool{},
		rooms:          map[string]types.Room{},
		history:        map[string][]types.Message{},
		block:          map[string]chan struct{}{},
		messagesCalled: make(chan string, 16),
		sendersCalled:  make(chan struct{}, 16),
	}
}

func (f *fakePlatform) addRoom(id string, msgs ...types.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[id] = types.Room{Id: id, Name: id, Type: "city", IsActive: true}
	f.members[id] = true
	f.history[id] = msgs
}

func (f *fakePlatform) CurrentUser(context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return "", false, nil
	}
	return f.userId, true, nil
}

func (f *fakePlatform) OwnProfile(context.Context) (types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return types.Profile{}, ErrNotFound
	}
	return *f.profile, nil
}

func (f *fakePlatform) Senders(_ context.Context, ids []string) ([]types.Sender, error) {
	f.mu.Lock()
	f.batchCalls++
	gate := f.sendersGate
	f.mu.Unlock()

	select {
	case f.sendersCalled <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Sender
	for _, id := range ids {
		if s, ok := f.senders[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePlatform) Sender(_ context.Context, id string) (types.Sender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singleCalls++
	s, ok := f.senders[id]
	if !ok {
		return types.Sender{}, ErrNotFound
	}
	return s, nil
}

func (f *fakePlatform) IsMember(_ context.Context, roomId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[roomId], nil
}

func (f *fakePlatform) Room(_ context.Context, roomId string) (types.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roomErr != nil {
		return types.Room{}, f.roomErr
	}
	r, ok := f.rooms[roomId]
	if !ok {
		return types.Room{}, ErrNotFound
	}
	return r, nil
}

func (f *fakePlatform) Messages(_ context.Context, roomId string, limit int) ([]types.Message, error) {
	f.mu.Lock()
	f.messageCalls++
	gate := f.block[roomId]
	f.mu.Unlock()

	f.messagesCalled <- roomId
	if gate != nil {
		// deliberately late: the result arrives even if the caller moved on
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.history[roomId]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]types.Message{}, msgs...), nil
}

func (f *fakePlatform) SendMessage(_ context.Context, roomId, text string) (types.Message, error) {
	f.mu.Lock()
	f.sendCalls++
	gate := f.sendGate
	err := f.sendErr
	f.nextId++
	id := fmt.Sprintf("sent-%d", f.nextId)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return types.Message{}, err
	}
	return types.Message{Id: id, RoomId: roomId, SenderId: "me", Text: text, CreatedAt: time.Now()}, nil
}

type fakeFeed struct {
	mu         sync.Mutex
	failures   int
	active     int
	maxActive  int
	subscribed chan *fakeSub
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subscribed: make(chan *fakeSub, 16)}
}

func (f *fakeFeed) Subscribe(ctx context.Context, roomId string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, errDisconnected
	}

	f.active++
	f.maxActive = max(f.maxActive, f.active)
	sub := &fakeSub{roomId: roomId, events: make(chan types.Message, 16), feed: f}
	f.subscribed <- sub
	return sub, nil
}

func (f *fakeFeed) stats() (active, maxActive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.maxActive
}

type fakeSub struct {
	roomId    string
	events    chan types.Message
	feed      *fakeFeed
	closeOnce sync.Once
}

func (s *fakeSub) Events() <-chan types.Message {
	return s.events
}

func (s *fakeSub) Err() error {
	return errDisconnected
}

func (s *fakeSub) Close() error {
	s.closeOnce.Do(func() {
		s.feed.mu.Lock()
		s.feed.active--
		s.feed.mu.Unlock()
	})
	return nil
}

type countingTone struct {
	mu    sync.Mutex
	plays int
}

func (c *countingTone) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	return nil
}

func (c *countingTone) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}
