package onboarding

import (
	"context"
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mapleins/community/internal/database"
)

func movingRequest() Request {
	return Request{
		Mode:        ModeMoving,
		FullName:    "Asha Rao",
		DateOfBirth: "1999-04-12",
		Username:    "  Asha_R ",
		FromCountry: "India",
		FromState:   "Karnataka",
		ToCountry:   "Canada",
		ToProvince:  "Ontario",
		ToCity:      "Toronto",
		Role:        "student",
	}
}

func catalog() []database.Room {
	return []database.Room{
		{Id: "ca", Type: database.RoomTypeCountry, Country: "Canada", IsActive: true},
		{Id: "on", Type: database.RoomTypeProvince, Country: "Canada", Province: "Ontario", IsActive: true},
		{Id: "qc", Type: database.RoomTypeProvince, Country: "Canada", Province: "Quebec", IsActive: true},
		{Id: "tor", Type: database.RoomTypeCity, Country: "Canada", Province: "Ontario", City: "Toronto", IsActive: true},
		{Id: "bra", Type: database.RoomTypeCity, Country: "Canada", Province: "Ontario", City: "Brampton", IsActive: true},
	}
}

func TestRequest_Normalize(t *testing.T) {
	n := Request{
		Mode:     " Local ",
		FullName: "  Asha   Rao ",
		Username: " AshA_1 ",
	}.Normalize()

	assert.Equal(t, ModeLocal, n.Mode)
	assert.Equal(t, "Asha   Rao", n.FullName)
	assert.Equal(t, "asha_1", n.Username)
	assert.Equal(t, "Asha", n.DisplayName, "expected display name to default to first name")
	assert.Equal(t, DefaultRole, n.Role)
	assert.Equal(t, DefaultReasons, n.Reasons)

	explicit := Request{Mode: ModeMoving, FullName: "Asha Rao", DisplayName: " AR "}.Normalize()
	assert.Equal(t, "AR", explicit.DisplayName)
	assert.Empty(t, explicit.Reasons, "expected no default reasons for moving mode")
}

func TestValidate(t *testing.T) {
	tcases := []struct {
		name   string
		modify func(r *Request)
		field  string
	}{
		{name: "valid moving", modify: func(r *Request) {}},
		{name: "valid local", modify: func(r *Request) {
			*r = Request{Mode: ModeLocal, FullName: "Asha", DateOfBirth: "1999-04-12", Username: "asha"}
		}},
		{name: "missing full name", modify: func(r *Request) { r.FullName = " " }, field: "full_name"},
		{name: "missing date of birth", modify: func(r *Request) { r.DateOfBirth = "" }, field: "date_of_birth"},
		{name: "bad date of birth", modify: func(r *Request) { r.DateOfBirth = "12/04/1999" }, field: "date_of_birth"},
		{name: "missing username", modify: func(r *Request) { r.Username = "  " }, field: "username"},
		{name: "username with space", modify: func(r *Request) { r.Username = "asha rao" }, field: "username"},
		{name: "username with dash", modify: func(r *Request) { r.Username = "asha-rao" }, field: "username"},
		{name: "unknown mode", modify: func(r *Request) { r.Mode = "visiting" }, field: "mode"},
		{name: "missing hometown", modify: func(r *Request) { r.FromState = "" }, field: "from"},
		{name: "missing destination city", modify: func(r *Request) { r.ToCity = "" }, field: "to"},
		{name: "city outside province", modify: func(r *Request) { r.ToCity = "Montreal" }, field: "to_city"},
		{name: "unknown role", modify: func(r *Request) { r.Role = "tourist" }, field: "role"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req := movingRequest()
			tc.modify(&req)

			err := Validate(req.Normalize())
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestBuildProfile(t *testing.T) {
	moving := BuildProfile("user-1", movingRequest().Normalize())
	assert.True(t, moving.IsMoving)
	assert.Equal(t, "asha_r", moving.Username)
	assert.Equal(t, "Asha", moving.DisplayName)
	assert.Equal(t, "Toronto", moving.ToCity)
	assert.Empty(t, moving.Reasons)

	local := BuildProfile("user-1", Request{
		Mode:        ModeLocal,
		FullName:    "Asha Rao",
		Username:    "asha",
		Phone:       " 555 ",
		ToCity:      "Toronto",
		CurrentCity: "Calgary",
	}.Normalize())
	assert.False(t, local.IsMoving)
	assert.Equal(t, "555", local.Phone)
	assert.Equal(t, DefaultReasons, local.Reasons)
	assert.Equal(t, "Calgary", local.CurrentCity)
	assert.Empty(t, local.ToCity, "expected destination to be dropped for local mode")
}

func TestResolveRooms(t *testing.T) {
	p := BuildProfile("user-1", movingRequest().Normalize())

	t.Run("joins country province and city", func(t *testing.T) {
		rooms := ResolveRooms(p, catalog(), mapset.NewSet())
		ids := make([]string, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.Id)
		}
		assert.Equal(t, []string{"ca", "on", "tor"}, ids)
	})

	t.Run("skips rooms already joined", func(t *testing.T) {
		rooms := ResolveRooms(p, catalog(), mapset.NewSet("ca", "tor"))
		require.Len(t, rooms, 1)
		assert.Equal(t, "on", rooms[0].Id)
	})

	t.Run("missing rooms are skipped", func(t *testing.T) {
		rooms := ResolveRooms(p, catalog()[:1], mapset.NewSet())
		require.Len(t, rooms, 1)
		assert.Equal(t, "ca", rooms[0].Id)
	})

	t.Run("no destination", func(t *testing.T) {
		assert.Empty(t, ResolveRooms(database.Profile{Id: "u"}, catalog(), mapset.NewSet()))
	})
}

func TestService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid username never reaches the store", func(t *testing.T) {
		repo := new(database.MockRepository)
		svc := NewService(repo, zaptest.NewLogger(t))

		req := movingRequest()
		req.Username = "bad name!"
		_, err := svc.Complete(ctx, "user-1", req)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		repo.AssertNotCalled(t, "UsernameTaken", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(database.MockRepository)
		repo.On("UsernameTaken", ctx, "asha_r", "user-1").Return(true, nil)
		svc := NewService(repo, zaptest.NewLogger(t))

		_, err := svc.Complete(ctx, "user-1", movingRequest())
		assert.ErrorIs(t, err, ErrUsernameTaken)
		repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
	})

	t.Run("username claimed concurrently", func(t *testing.T) {
		repo := new(database.MockRepository)
		expected := BuildProfile("user-1", movingRequest().Normalize())
		repo.On("UsernameTaken", ctx, "asha_r", "user-1").Return(false, nil)
		repo.On("UpsertProfile", ctx, expected).
			Return(database.Profile{}, &pq.Error{Code: uniqueViolation, Constraint: "profiles_username_idx"})
		svc := NewService(repo, zaptest.NewLogger(t))

		_, err := svc.Complete(ctx, "user-1", movingRequest())
		assert.ErrorIs(t, err, ErrUsernameTaken)
		repo.AssertNotCalled(t, "ListMembershipRoomIds", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("moving joins destination rooms", func(t *testing.T) {
		repo := new(database.MockRepository)
		expected := BuildProfile("user-1", movingRequest().Normalize())
		repo.On("UsernameTaken", ctx, "asha_r", "user-1").Return(false, nil)
		repo.On("UpsertProfile", ctx, expected).Return(expected, nil)
		repo.On("ListMembershipRoomIds", ctx, "user-1").Return([]string{"ca"}, nil)
		repo.On("ListActiveRooms", ctx, "Canada").Return(catalog(), nil)
		repo.On("CreateMembership", ctx, "on", "user-1").Return(nil)
		repo.On("CreateMembership", ctx, "tor", "user-1").Return(errors.New("boom"))
		svc := NewService(repo, zaptest.NewLogger(t))

		res, err := svc.Complete(ctx, "user-1", movingRequest())
		require.NoError(t, err)
		assert.Equal(t, expected, res.Profile)
		require.Len(t, res.Joined, 1)
		assert.Equal(t, "on", res.Joined[0].Id)
		repo.AssertExpectations(t)
	})

	t.Run("succeeds when no matching room exists", func(t *testing.T) {
		repo := new(database.MockRepository)
		expected := BuildProfile("user-1", movingRequest().Normalize())
		repo.On("UsernameTaken", ctx, "asha_r", "user-1").Return(false, nil)
		repo.On("UpsertProfile", ctx, expected).Return(expected, nil)
		repo.On("ListMembershipRoomIds", ctx, "user-1").Return([]string{}, nil)
		repo.On("ListActiveRooms", ctx, "Canada").Return([]database.Room{}, nil)
		svc := NewService(repo, zaptest.NewLogger(t))

		res, err := svc.Complete(ctx, "user-1", movingRequest())
		require.NoError(t, err)
		assert.Empty(t, res.Joined)
		repo.AssertNotCalled(t, "CreateMembership", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("room lookup failure does not fail onboarding", func(t *testing.T) {
		repo := new(database.MockRepository)
		expected := BuildProfile("user-1", movingRequest().Normalize())
		repo.On("UsernameTaken", ctx, "asha_r", "user-1").Return(false, nil)
		repo.On("UpsertProfile", ctx, expected).Return(expected, nil)
		repo.On("ListMembershipRoomIds", ctx, "user-1").Return([]string(nil), errors.New("down"))
		repo.On("ListActiveRooms", ctx, "Canada").Return([]database.Room(nil), errors.New("down"))
		svc := NewService(repo, zaptest.NewLogger(t))

		_, err := svc.Complete(ctx, "user-1", movingRequest())
		assert.NoError(t, err)
	})

	t.Run("local mode skips auto-join", func(t *testing.T) {
		repo := new(database.MockRepository)
		req := Request{Mode: ModeLocal, FullName: "Asha Rao", DateOfBirth: "1999-04-12", Username: "asha"}
		expected := BuildProfile("user-1", req.Normalize())
		repo.On("UsernameTaken", ctx, "asha", "user-1").Return(false, nil)
		repo.On("UpsertProfile", ctx, expected).Return(expected, nil)
		svc := NewService(repo, zaptest.NewLogger(t))

		res, err := svc.Complete(ctx, "user-1", req)
		require.NoError(t, err)
		assert.Empty(t, res.Joined)
		repo.AssertNotCalled(t, "ListActiveRooms", mock.Anything, mock.Anything)
	})
}
