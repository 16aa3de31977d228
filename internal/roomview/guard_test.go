package roomview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapleins/community/internal/types"
)

type identityFunc func(ctx context.Context) (string, bool, error)

func (f identityFunc) CurrentUser(ctx context.Context) (string, bool, error) {
	return f(ctx)
}

type profileFunc func(ctx context.Context) (types.Profile, error)

func (f profileFunc) OwnProfile(ctx context.Context) (types.Profile, error) {
	return f(ctx)
}

func TestGuard_Resolve(t *testing.T) {
	signedIn := identityFunc(func(context.Context) (string, bool, error) { return "u1", true, nil })

	tcases := []struct {
		name     string
		identity Identity
		profiles ProfileSource
		verdict  Verdict
		wantErr  bool
	}{
		{
			name:     "signed out",
			identity: identityFunc(func(context.Context) (string, bool, error) { return "", false, nil }),
			verdict:  NeedsSignIn,
		},
		{
			name:     "identity service fails",
			identity: identityFunc(func(context.Context) (string, bool, error) { return "", false, errors.New("down") }),
			verdict:  NeedsSignIn,
			wantErr:  true,
		},
		{
			name:     "no profile",
			identity: signedIn,
			profiles: profileFunc(func(context.Context) (types.Profile, error) { return types.Profile{}, ErrNotFound }),
			verdict:  NeedsOnboarding,
		},
		{
			name:     "onboarded",
			identity: signedIn,
			profiles: profileFunc(func(context.Context) (types.Profile, error) { return types.Profile{Id: "u1", Username: "asha"}, nil }),
			verdict:  Allowed,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			viewer, verdict, err := NewGuard(tc.identity, tc.profiles).Resolve(context.Background())
			assert.Equal(t, tc.verdict, verdict)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if verdict == Allowed {
				assert.Equal(t, "u1", viewer.Id)
				assert.Equal(t, "asha", viewer.Sender().Username)
			}
		})
	}
}
