package roomview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mapleins/community/internal/types"
)

// startFollow launches the live subscription for gen. A stale generation never
// starts one, so two rooms are never followed at once.
func (v *View) startFollow(ctx context.Context, gen uint64, roomId string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen || v.subDone != nil {
		return
	}

	done := make(chan struct{})
	v.subDone = done
	go v.follow(ctx, gen, roomId, done)
}

func (v *View) setFeed(gen uint64, st FeedState) {
	v.update(gen, func() { v.feedSt = st })
}

func (v *View) follow(ctx context.Context, gen uint64, roomId string, done chan struct{}) {
	defer close(done)

	log := v.log.With(zap.String("room_id", roomId))
	backoff := v.policy.Initial
	attempts := 0

	for {
		if attempts == 0 {
			v.setFeed(gen, FeedSubscribing)
		}

		sub, err := v.feed.Subscribe(ctx, roomId)
		if err == nil {
			v.setFeed(gen, FeedSubscribed)
			if attempts > 0 {
				v.resync(ctx, gen, roomId)
			}
			attempts = 0
			backoff = v.policy.Initial

			v.consume(ctx, gen, roomId, sub)
			err = sub.Err()
			sub.Close()
		}

		if ctx.Err() != nil {
			v.setFeed(gen, FeedClosed)
			return
		}

		attempts++
		if attempts > v.policy.Attempts {
			log.Error("live feed gave up", zap.Int("attempts", attempts-1), zap.Error(err))
			v.setFeed(gen, FeedError)
			return
		}

		log.Warn("live feed interrupted, reconnecting",
			zap.Int("attempt", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		v.setFeed(gen, FeedReconnecting)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			v.setFeed(gen, FeedClosed)
			return
		case <-t.C:
		}
		backoff = min(backoff*2, v.policy.Max)
	}
}

func (v *View) consume(ctx context.Context, gen uint64, roomId string, sub Subscription) {
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-events:
			if !ok {
				return
			}
			if m.RoomId != roomId {
				continue
			}
			v.receive(ctx, gen, m)
		}
	}
}

// receive merges one live insert. Before history has loaded the event is
// held; afterwards it is appended unless already present.
func (v *View) receive(ctx context.Context, gen uint64, m types.Message) {
	var (
		fresh    bool
		foreign  bool
		held     bool
		enricher *Enricher
	)

	v.update(gen, func() {
		foreign = m.SenderId != v.viewer.Id
		enricher = v.enricher

		if !v.loaded {
			held = true
			for _, h := range v.held {
				if h.Id == m.Id {
					return
				}
			}
			v.held = append(v.held, m)
			fresh = true
			return
		}

		var own *types.Sender
		if !foreign {
			own = v.viewer.Sender()
		}
		fresh = v.upsertLocked(m, own)
	})

	if !fresh || !foreign {
		return
	}

	if v.tone != nil {
		if err := v.tone.Play(); err != nil {
			v.log.Debug("tone", zap.Error(err))
		}
	}

	// held events are resolved when history is merged
	if enricher != nil && !held {
		go v.attachSender(ctx, gen, enricher, m)
	}
}

// attachSender resolves the author of a live message and fills it in place.
func (v *View) attachSender(ctx context.Context, gen uint64, enricher *Enricher, m types.Message) {
	sender, err := enricher.Resolve(ctx, m.SenderId)
	if err != nil {
		if ctx.Err() == nil {
			v.log.Warn("sender lookup failed", zap.String("sender_id", m.SenderId), zap.Error(err))
		}
		return
	}

	v.update(gen, func() {
		if e, ok := v.index[m.Id]; ok && e.sender == nil {
			e.sender = &sender
		}
	})
}

// resync re-reads history after a reconnect so messages sent while the feed
// was down are not lost.
func (v *View) resync(ctx context.Context, gen uint64, roomId string) {
	v.mu.Lock()
	loaded := v.loaded && gen == v.gen
	v.mu.Unlock()
	if !loaded {
		return
	}

	history, err := v.rooms.Messages(ctx, roomId, HistoryLimit)
	if err != nil {
		if ctx.Err() == nil {
			v.log.Warn("resync after reconnect failed", zap.String("room_id", roomId), zap.Error(err))
		}
		return
	}

	if err := v.mergeHistory(ctx, gen, history); err != nil && err != ErrAbandoned {
		v.log.Warn("resync merge failed", zap.Error(err))
	}
}
