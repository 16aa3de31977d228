package roomview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mapleins/community/internal/types"
)

type mockSenders struct {
	mock.Mock
}

func (m *mockSenders) Senders(ctx context.Context, ids []string) ([]types.Sender, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]types.Sender), args.Error(1)
}

func (m *mockSenders) Sender(ctx context.Context, id string) (types.Sender, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.Sender), args.Error(1)
}

func TestLabel(t *testing.T) {
	tcases := []struct {
		name     string
		sender   *types.Sender
		senderId string
		expected string
	}{
		{name: "own with username", sender: &types.Sender{Username: "asha"}, senderId: "me", expected: "Me (@asha)"},
		{name: "own without profile", senderId: "me", expected: "You"},
		{name: "own blank username", sender: &types.Sender{Username: "  "}, senderId: "me", expected: "You"},
		{name: "display name", sender: &types.Sender{DisplayName: "Ravi", FullName: "Ravi Singh", Username: "ravi"}, senderId: "u2", expected: "Ravi"},
		{name: "first token of full name", sender: &types.Sender{DisplayName: " ", FullName: "  Priya  Nair ", Username: "priya"}, senderId: "u2", expected: "Priya"},
		{name: "username", sender: &types.Sender{Username: "kofi"}, senderId: "u2", expected: "@kofi"},
		{name: "empty projection", sender: &types.Sender{}, senderId: "u2", expected: "Member"},
		{name: "unresolved", senderId: "u2", expected: "Member"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Label(tc.sender, tc.senderId, "me"))
		})
	}
}

func TestSenderIds(t *testing.T) {
	msgs := []types.Message{
		{Id: "1", SenderId: "b"},
		{Id: "2", SenderId: "a"},
		{Id: "3", SenderId: "b"},
		{Id: "4", SenderId: ""},
		{Id: "5", SenderId: "c"},
	}
	assert.Equal(t, []string{"b", "a", "c"}, SenderIds(msgs))
}

func TestEnricher_Batch(t *testing.T) {
	t.Run("one lookup for distinct senders", func(t *testing.T) {
		senders := &mockSenders{}
		defer senders.AssertExpectations(t)
		senders.On("Senders", mock.Anything, []string{"u1", "u2"}).Return([]types.Sender{
			{Id: "u1", Username: "one"},
			{Id: "u2", Username: "two"},
		}, nil).Once()

		e := NewEnricher(senders, Viewer{Id: "me"})
		got, err := e.Batch(context.Background(), []types.Message{
			{Id: "m1", SenderId: "u1"}, {Id: "m2", SenderId: "u2"}, {Id: "m3", SenderId: "u1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "two", got["u2"].Username)
		assert.Len(t, got, 2)
	})

	t.Run("no lookup for empty set", func(t *testing.T) {
		senders := &mockSenders{}
		e := NewEnricher(senders, Viewer{Id: "me"})

		got, err := e.Batch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
		senders.AssertNotCalled(t, "Senders", mock.Anything, mock.Anything)
	})
}

func TestEnricher_Resolve(t *testing.T) {
	senders := &mockSenders{}
	defer senders.AssertExpectations(t)
	senders.On("Sender", mock.Anything, "u2").Return(types.Sender{Id: "u2", Username: "two"}, nil).Once()

	e := NewEnricher(senders, Viewer{Id: "me", Profile: &types.Profile{Id: "me", Username: "asha"}})

	own, err := e.Resolve(context.Background(), "me")
	require.NoError(t, err)
	assert.Equal(t, "asha", own.Username)

	other, err := e.Resolve(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "two", other.Username)
}
