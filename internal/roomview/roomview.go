// Package roomview keeps the state of one open chat room: its history, the
// live feed merged into it and the message being composed. It talks to the
// platform only through the small interfaces below.
package roomview

import (
	"context"
	"errors"

	"github.com/mapleins/community/internal/types"
)

const HistoryLimit = 100

var (
	// ErrNotFound is returned by sources when a row does not exist.
	ErrNotFound = errors.New("not found")

	ErrEmptyMessage = errors.New("message is empty")
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrNotReady     = errors.New("room is not ready")

	// ErrAbandoned reports that the room was switched or closed before the
	// operation could apply its result.
	ErrAbandoned = errors.New("room view changed")
)

// Identity resolves who is signed in. Nobody signed in is ("", false, nil).
type Identity interface {
	CurrentUser(ctx context.Context) (string, bool, error)
}

// ProfileSource loads the signed in user's own profile, ErrNotFound when
// onboarding has not happened yet.
type ProfileSource interface {
	OwnProfile(ctx context.Context) (types.Profile, error)
}

type SenderSource interface {
	Senders(ctx context.Context, ids []string) ([]types.Sender, error)
	Sender(ctx context.Context, id string) (types.Sender, error)
}

type RoomSource interface {
	IsMember(ctx context.Context, roomId string) (bool, error)
	Room(ctx context.Context, roomId string) (types.Room, error)
	Messages(ctx context.Context, roomId string, limit int) ([]types.Message, error)
	SendMessage(ctx context.Context, roomId, text string) (types.Message, error)
}

// Subscription delivers inserted messages until Events is closed, after which
// Err explains why.
type Subscription interface {
	Events() <-chan types.Message
	Err() error
	Close() error
}

type Feed interface {
	Subscribe(ctx context.Context, roomId string) (Subscription, error)
}

// Player plays the short incoming message tone.
type Player interface {
	Play() error
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNoIdentity
	StatusNotMember
	StatusNotFound
	StatusClosed
)

var statusNames = map[Status]string{
	StatusIdle:       "idle",
	StatusLoading:    "loading",
	StatusReady:      "ready",
	StatusNoIdentity: "no identity",
	StatusNotMember:  "not a member",
	StatusNotFound:   "not found",
	StatusClosed:     "closed",
}

func (s Status) String() string {
	return statusNames[s]
}

type FeedState int

const (
	FeedIdle FeedState = iota
	FeedSubscribing
	FeedSubscribed
	FeedReconnecting
	FeedError
	FeedClosed
)

var feedStateNames = map[FeedState]string{
	FeedIdle:         "idle",
	FeedSubscribing:  "subscribing",
	FeedSubscribed:   "subscribed",
	FeedReconnecting: "reconnecting",
	FeedError:        "error",
	FeedClosed:       "closed",
}

func (s FeedState) String() string {
	return feedStateNames[s]
}
