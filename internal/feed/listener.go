package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/types"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	listenerPingInterval = 90 * time.Second
)

type Publisher interface {
	Publish(ev Event)
}

// MessageReader loads the row a notification points at.
type MessageReader interface {
	GetMessage(ctx context.Context, id string) (database.Message, error)
}

// Listener turns PostgreSQL notifications on a channel into insert events.
type Listener struct {
	dsn     string
	channel string
	rows    MessageReader
	pub     Publisher
	log     *zap.Logger
}

func NewListener(dsn, channel string, rows MessageReader, pub Publisher, logger *zap.Logger) *Listener {
	return &Listener{
		dsn:     dsn,
		channel: channel,
		rows:    rows,
		pub:     pub,
		log:     logger.With(zap.String("channel", channel)),
	}
}

// Run listens until ctx is cancelled. The driver reconnects on its own; a nil
// notification marks a reconnect after which events may have been missed.
func (l *Listener) Run(ctx context.Context) error {
	pl := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Info("listener connected")
		case pq.ListenerEventDisconnected:
			l.log.Warn("listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			l.log.Info("listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Warn("listener connection attempt failed", zap.Error(err))
		}
	})
	defer pl.Close()

	if err := pl.Listen(l.channel); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}

	l.consume(ctx, pl.Notify, pl.Ping)
	return nil
}

func (l *Listener) consume(ctx context.Context, notify <-chan *pq.Notification, ping func() error) {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-notify:
			if !ok {
				return
			}
			if n == nil {
				l.log.Warn("listener connection was reset")
				continue
			}

			key, err := ParseNotification(n.Extra)
			if err != nil {
				l.log.Error("bad notification payload", zap.Error(err))
				continue
			}
			ev, err := l.load(ctx, key)
			if err != nil {
				l.log.Error("load notified message", zap.String("message_id", key.Id), zap.Error(err))
				continue
			}
			l.pub.Publish(ev)
		case <-ticker.C:
			if err := ping(); err != nil {
				l.log.Warn("listener ping", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// MessageKey identifies the inserted row a notification refers to.
type MessageKey struct {
	Id     string `json:"id"`
	RoomId string `json:"room_id"`
}

// ParseNotification decodes the key payload sent by the messages insert
// trigger.
func ParseNotification(payload string) (MessageKey, error) {
	var key MessageKey
	if err := json.Unmarshal([]byte(payload), &key); err != nil {
		return MessageKey{}, fmt.Errorf("decode message key: %w", err)
	}
	if key.Id == "" || key.RoomId == "" {
		return MessageKey{}, fmt.Errorf("message key missing id or room_id")
	}
	return key, nil
}

func (l *Listener) load(ctx context.Context, key MessageKey) (Event, error) {
	m, err := l.rows.GetMessage(ctx, key.Id)
	if err != nil {
		return Event{}, fmt.Errorf("get message: %w", err)
	}

	return Event{
		Type:   EventInsert,
		RoomId: m.RoomId,
		Message: types.Message{
			Id:        m.Id,
			RoomId:    m.RoomId,
			SenderId:  m.SenderId,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		},
	}, nil
}
