package roomview

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

func (v *View) SetDraft(text string) {
	v.mu.Lock()
	gen := v.gen
	v.mu.Unlock()

	v.update(gen, func() { v.draft = text })
}

// Send posts the current draft. The draft is cleared at once and restored if
// the insert fails; there is no retry.
func (v *View) Send(ctx context.Context) error {
	v.mu.Lock()
	gen := v.gen
	roomId := v.roomId
	draft := v.draft
	text := strings.TrimSpace(draft)

	var err error
	switch {
	case v.status != StatusReady:
		err = ErrNotReady
	case text == "":
		err = ErrEmptyMessage
	case v.sending:
		err = ErrSendInFlight
	default:
		v.sending = true
		v.draft = ""
		v.sendErr = nil
	}
	var snap Snapshot
	if err == nil {
		snap = v.snapshotLocked()
	}
	v.mu.Unlock()

	if err != nil {
		return err
	}
	if v.onChange != nil {
		v.onChange(snap)
	}

	msg, err := v.rooms.SendMessage(ctx, roomId, text)
	if err != nil {
		v.log.Warn("send failed", zap.String("room_id", roomId), zap.Error(err))
		if !v.update(gen, func() {
			v.sending = false
			v.draft = draft
			v.sendErr = err
		}) {
			return ErrAbandoned
		}
		return err
	}

	if !v.update(gen, func() {
		v.sending = false
		v.upsertLocked(msg, v.viewer.Sender())
	}) {
		return ErrAbandoned
	}

	return nil
}
