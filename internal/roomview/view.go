package roomview

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mapleins/community/internal/types"
)

type ReconnectPolicy struct {
	Initial  time.Duration
	Max      time.Duration
	Attempts int
}

var DefaultReconnectPolicy = ReconnectPolicy{
	Initial:  500 * time.Millisecond,
	Max:      10 * time.Second,
	Attempts: 5,
}

type Deps struct {
	Identity  Identity
	Profiles  ProfileSource
	Senders   SenderSource
	Rooms     RoomSource
	Feed      Feed
	Tone      Player
	Reconnect ReconnectPolicy

	// OnChange receives a snapshot after every change. It may be called
	// from several goroutines.
	OnChange func(Snapshot)
}

type Item struct {
	types.Message
	Sender *types.Sender
	Label  string
}

type Snapshot struct {
	RoomId   string
	Status   Status
	Room     types.Room
	Messages []Item
	Feed     FeedState
	Draft    string
	Sending  bool
	SendErr  error
}

type entry struct {
	msg    types.Message
	sender *types.Sender
}

// View holds one open room at a time. Every open bumps a generation number
// and cancels the previous context; results from an older generation are
// dropped before they touch the state.
type View struct {
	log      *zap.Logger
	guard    *Guard
	senders  SenderSource
	rooms    RoomSource
	feed     Feed
	tone     Player
	policy   ReconnectPolicy
	onChange func(Snapshot)

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	subDone  chan struct{}
	roomId   string
	status   Status
	viewer   Viewer
	enricher *Enricher
	room     types.Room
	entries  []*entry
	index    map[string]*entry
	held     []types.Message
	loaded   bool
	feedSt   FeedState
	draft    string
	sending  bool
	sendErr  error
}

func NewView(logger *zap.Logger, deps Deps) *View {
	policy := deps.Reconnect
	if policy.Attempts <= 0 {
		policy = DefaultReconnectPolicy
	}

	return &View{
		log:      logger,
		guard:    NewGuard(deps.Identity, deps.Profiles),
		senders:  deps.Senders,
		rooms:    deps.Rooms,
		feed:     deps.Feed,
		tone:     deps.Tone,
		policy:   policy,
		onChange: deps.OnChange,
		index:    make(map[string]*entry),
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	items := make([]Item, 0, len(v.entries))
	for _, e := range v.entries {
		items = append(items, Item{
			Message: e.msg,
			Sender:  e.sender,
			Label:   Label(e.sender, e.msg.SenderId, v.viewer.Id),
		})
	}

	return Snapshot{
		RoomId:   v.roomId,
		Status:   v.status,
		Room:     v.room,
		Messages: items,
		Feed:     v.feedSt,
		Draft:    v.draft,
		Sending:  v.sending,
		SendErr:  v.sendErr,
	}
}

// update runs fn under the lock when gen is still current and publishes the
// resulting snapshot. It reports whether fn ran.
func (v *View) update(gen uint64, fn func()) bool {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		return false
	}
	fn()
	snap := v.snapshotLocked()
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange(snap)
	}
	return true
}

func (v *View) current(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return gen == v.gen
}

// reset starts a new generation for roomId and returns it together with the
// done channel of the previous live subscription.
func (v *View) reset(ctx context.Context, roomId string, status Status) (context.Context, uint64, chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	if v.cancel != nil {
		v.cancel()
	}
	prev := v.subDone
	ctx, v.cancel = context.WithCancel(ctx)

	v.subDone = nil
	v.roomId = roomId
	v.status = status
	v.viewer = Viewer{}
	v.enricher = nil
	v.room = types.Room{}
	v.entries = nil
	v.index = make(map[string]*entry)
	v.held = nil
	v.loaded = false
	v.feedSt = FeedIdle
	v.draft = ""
	v.sending = false
	v.sendErr = nil

	return ctx, v.gen, prev
}

// Open switches the view to roomId and loads it. The previous room's load is
// abandoned and its live subscription is torn down before a new one starts.
// Every outcome, including failures, ends in a status; ErrAbandoned means a
// later Open or Close took over.
func (v *View) Open(ctx context.Context, roomId string) error {
	ctx, gen, prev := v.reset(ctx, roomId, StatusLoading)
	if prev != nil {
		<-prev
	}

	return v.load(ctx, gen, roomId)
}

// Close abandons any load and stops the live subscription.
func (v *View) Close() {
	_, gen, prev := v.reset(context.Background(), "", StatusClosed)
	v.mu.Lock()
	if gen == v.gen {
		v.cancel()
	}
	v.mu.Unlock()
	if prev != nil {
		<-prev
	}
}

func (v *View) finish(gen uint64, status Status) error {
	if !v.update(gen, func() { v.status = status }) {
		return ErrAbandoned
	}
	return nil
}

// fail logs an unexpected load error and shows the room as not found.
func (v *View) fail(ctx context.Context, gen uint64, step string, err error) error {
	if ctx.Err() != nil || !v.current(gen) {
		return ErrAbandoned
	}
	v.log.Error("room load failed", zap.String("step", step), zap.Error(err))
	return v.finish(gen, StatusNotFound)
}

func (v *View) load(ctx context.Context, gen uint64, roomId string) error {
	if roomId == "" {
		return v.finish(gen, StatusNotFound)
	}

	viewer, verdict, err := v.guard.Resolve(ctx)
	if err != nil {
		return v.fail(ctx, gen, "identity", err)
	}
	if verdict == NeedsSignIn {
		return v.finish(gen, StatusNoIdentity)
	}
	if !v.update(gen, func() {
		v.viewer = viewer
		v.enricher = NewEnricher(v.senders, viewer)
	}) {
		return ErrAbandoned
	}

	member, err := v.rooms.IsMember(ctx, roomId)
	if err != nil {
		return v.fail(ctx, gen, "membership", err)
	}
	if !member {
		return v.finish(gen, StatusNotMember)
	}

	room, err := v.rooms.Room(ctx, roomId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return v.finish(gen, StatusNotFound)
		}
		return v.fail(ctx, gen, "room", err)
	}
	if !v.update(gen, func() { v.room = room }) {
		return ErrAbandoned
	}

	// the feed may attach before history arrives; early events are held
	v.startFollow(ctx, gen, roomId)

	history, err := v.rooms.Messages(ctx, roomId, HistoryLimit)
	if err != nil {
		return v.fail(ctx, gen, "messages", err)
	}

	return v.mergeHistory(ctx, gen, history)
}

// mergeHistory resolves the authors of history and of any held live events,
// then installs history followed by the held events it does not contain.
func (v *View) mergeHistory(ctx context.Context, gen uint64, history []types.Message) error {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		return ErrAbandoned
	}
	enricher := v.enricher
	pending := append(append([]types.Message{}, history...), v.held...)
	v.mu.Unlock()

	senders, err := enricher.Batch(ctx, pending)
	if err != nil {
		if ctx.Err() != nil || !v.current(gen) {
			return ErrAbandoned
		}
		// labels fall back until live lookups fill them in
		v.log.Warn("sender lookup failed", zap.Error(err))
		senders = map[string]types.Sender{}
	}

	looked := make(map[string]bool, len(pending))
	for _, m := range pending {
		looked[m.Id] = true
	}

	// events held while the batch was in flight were not part of it
	var late []types.Message
	if !v.update(gen, func() {
		for _, m := range history {
			v.upsertLocked(m, senderFrom(senders, m.SenderId))
		}
		for _, m := range v.held {
			if looked[m.Id] {
				v.upsertLocked(m, senderFrom(senders, m.SenderId))
				continue
			}
			if m.SenderId == v.viewer.Id {
				v.upsertLocked(m, v.viewer.Sender())
				continue
			}
			if v.upsertLocked(m, senderFrom(senders, m.SenderId)) && v.index[m.Id].sender == nil {
				late = append(late, m)
			}
		}
		v.held = nil
		v.loaded = true
		v.status = StatusReady
	}) {
		return ErrAbandoned
	}

	for _, m := range late {
		go v.attachSender(ctx, gen, enricher, m)
	}

	return nil
}

func senderFrom(senders map[string]types.Sender, id string) *types.Sender {
	s, ok := senders[id]
	if !ok {
		return nil
	}
	return &s
}

// upsertLocked appends m unless a message with its id is already held. An
// existing entry only gains a sender it was missing. It reports whether m was
// new.
func (v *View) upsertLocked(m types.Message, sender *types.Sender) bool {
	if e, ok := v.index[m.Id]; ok {
		if e.sender == nil && sender != nil {
			e.sender = sender
		}
		return false
	}

	e := &entry{msg: m, sender: sender}
	v.entries = append(v.entries, e)
	v.index[m.Id] = e
	return true
}
