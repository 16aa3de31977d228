package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mapleins/community/internal/stats"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Forward(ctx context.Context, p Payload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func TestNormalize(t *testing.T) {
	tcases := []struct {
		name     string
		raw      map[string]any
		expected Entry
		err      error
	}{
		{
			name: "full entry",
			raw: map[string]any{
				"email":  "  Asha@Example.COM ",
				"name":   " Asha ",
				"role":   "worker",
				"city":   " Montreal ",
				"intake": " Fall 2026 ",
			},
			expected: Entry{Email: "asha@example.com", Name: "Asha", Role: "worker", City: "Montreal", Intake: "Fall 2026"},
		},
		{
			name:     "unknown role becomes other",
			raw:      map[string]any{"email": "a@b.co", "role": "astronaut"},
			expected: Entry{Email: "a@b.co", Role: "other"},
		},
		{
			name:     "non string values are absent",
			raw:      map[string]any{"email": "a@b.co", "name": 42.0, "role": true, "city": []any{"x"}},
			expected: Entry{Email: "a@b.co", Role: "other"},
		},
		{
			name: "missing email",
			raw:  map[string]any{"name": "Asha"},
			err:  ErrEmailRequired,
		},
		{
			name: "whitespace email",
			raw:  map[string]any{"email": "   "},
			err:  ErrEmailRequired,
		},
		{
			name: "non string email",
			raw:  map[string]any{"email": 12},
			err:  ErrEmailRequired,
		},
		{
			name: "invalid email",
			raw:  map[string]any{"email": "not-an-email"},
			err:  ErrInvalidEmail,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			entry, err := Normalize(tc.raw)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, entry)
		})
	}
}

func TestNewPayload(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 5_000_000, time.FixedZone("IST", 5*3600+1800))
	p := NewPayload(Entry{Email: "a@b.co", Role: "other", City: "Montreal"}, now)

	assert.Equal(t, "2026-03-01T04:00:00.005Z", p.Timestamp)
	assert.Equal(t, "India", p.Country)
	assert.Equal(t, "waitlist_page", p.Source)
	assert.Equal(t, "Montreal", p.City)
	assert.Equal(t, []any{"2026-03-01T04:00:00.005Z", "a@b.co", "", "other", "Montreal", "", "India", "waitlist_page"}, p.Row())
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("forwards once", func(t *testing.T) {
		sink := new(mockSink)
		st := new(stats.MockStatsUpdater)
		st.On("Incr", stats.NumWaitlistForwarded).Return()

		expected := Payload{
			Timestamp: "2026-03-01T00:00:00.000Z",
			Email:     "a@b.co",
			Role:      "other",
			City:      "Montreal",
			Country:   "India",
			Source:    "waitlist_page",
		}
		sink.On("Forward", ctx, expected).Return(nil).Once()

		svc := NewService(sink, zaptest.NewLogger(t), st)
		svc.now = func() time.Time { return fixed }

		err := svc.Submit(ctx, map[string]any{"email": "a@b.co", "role": "unknown", "city": "Montreal"})
		require.NoError(t, err)
		sink.AssertExpectations(t)
		st.AssertExpectations(t)
	})

	t.Run("invalid entry is not forwarded", func(t *testing.T) {
		sink := new(mockSink)
		svc := NewService(sink, zaptest.NewLogger(t), stats.NopStats{})

		err := svc.Submit(ctx, map[string]any{"email": "nope"})
		assert.ErrorIs(t, err, ErrInvalidEmail)
		sink.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
	})

	t.Run("no sink", func(t *testing.T) {
		svc := NewService(nil, zaptest.NewLogger(t), stats.NopStats{})
		err := svc.Submit(ctx, map[string]any{"email": "a@b.co"})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("sink failure", func(t *testing.T) {
		sink := new(mockSink)
		sink.On("Forward", ctx, mock.Anything).Return(errors.New("status 500")).Once()
		svc := NewService(sink, zaptest.NewLogger(t), stats.NopStats{})

		err := svc.Submit(ctx, map[string]any{"email": "a@b.co"})
		var sinkErr *SinkError
		assert.ErrorAs(t, err, &sinkErr)
		sink.AssertNumberOfCalls(t, "Forward", 1)
	})
}
