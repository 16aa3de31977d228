package roomview

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapleins/community/internal/types"
)

type Verdict int

const (
	Allowed Verdict = iota
	NeedsSignIn
	NeedsOnboarding
)

type Viewer struct {
	Id      string
	Profile *types.Profile
}

// Sender is the viewer's own projection, nil before onboarding.
func (v Viewer) Sender() *types.Sender {
	if v.Profile == nil {
		return nil
	}
	s := v.Profile.Sender()
	return &s
}

// Guard decides whether a view may be entered. Nothing is cached between
// calls.
type Guard struct {
	identity Identity
	profiles ProfileSource
}

func NewGuard(identity Identity, profiles ProfileSource) *Guard {
	return &Guard{identity: identity, profiles: profiles}
}

func (g *Guard) Resolve(ctx context.Context) (Viewer, Verdict, error) {
	userId, ok, err := g.identity.CurrentUser(ctx)
	if err != nil {
		return Viewer{}, NeedsSignIn, fmt.Errorf("current user: %w", err)
	}
	if !ok {
		return Viewer{}, NeedsSignIn, nil
	}

	profile, err := g.profiles.OwnProfile(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Viewer{Id: userId}, NeedsOnboarding, nil
		}
		return Viewer{Id: userId}, NeedsOnboarding, fmt.Errorf("own profile: %w", err)
	}

	return Viewer{Id: userId, Profile: &profile}, Allowed, nil
}
