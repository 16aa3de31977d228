package roomview

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/mapleins/community/internal/types"
)

// Enricher resolves message authors to display projections.
type Enricher struct {
	senders  SenderSource
	viewerId string
	viewer   *types.Sender
}

func NewEnricher(senders SenderSource, viewer Viewer) *Enricher {
	return &Enricher{
		senders:  senders,
		viewerId: viewer.Id,
		viewer:   viewer.Sender(),
	}
}

// SenderIds returns the distinct non-empty author ids in order of first
// appearance.
func SenderIds(msgs []types.Message) []string {
	ids := lo.Map(msgs, func(m types.Message, _ int) string { return m.SenderId })
	return lo.Uniq(lo.Compact(ids))
}

// Batch looks all authors up at once. An empty set makes no call.
func (e *Enricher) Batch(ctx context.Context, msgs []types.Message) (map[string]types.Sender, error) {
	ids := SenderIds(msgs)
	if len(ids) == 0 {
		return map[string]types.Sender{}, nil
	}

	senders, err := e.senders.Senders(ctx, ids)
	if err != nil {
		return nil, err
	}

	return lo.SliceToMap(senders, func(s types.Sender) (string, types.Sender) {
		return s.Id, s
	}), nil
}

// Resolve looks up one author. The viewer is answered from the cached
// profile without a call.
func (e *Enricher) Resolve(ctx context.Context, senderId string) (types.Sender, error) {
	if senderId == e.viewerId && e.viewer != nil {
		return *e.viewer, nil
	}
	return e.senders.Sender(ctx, senderId)
}

// Label is the name shown next to a message.
func Label(sender *types.Sender, senderId, viewerId string) string {
	if senderId != "" && senderId == viewerId {
		if sender != nil {
			if u := strings.TrimSpace(sender.Username); u != "" {
				return "Me (@" + u + ")"
			}
		}
		return "You"
	}

	if sender == nil {
		return "Member"
	}
	if d := strings.TrimSpace(sender.DisplayName); d != "" {
		return d
	}
	if fields := strings.Fields(sender.FullName); len(fields) > 0 {
		return fields[0]
	}
	if u := strings.TrimSpace(sender.Username); u != "" {
		return "@" + u
	}
	return "Member"
}
