package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRepository) GetAccountById(ctx context.Context, id string) (Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRepository) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRepository) GetProfile(ctx context.Context, id string) (Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Profile), args.Error(1)
}
func (m *MockRepository) UsernameTaken(ctx context.Context, username, exceptId string) (bool, error) {
	args := m.Called(ctx, username, exceptId)
	return args.Bool(0), args.Error(1)
}
func (m *MockRepository) UpsertProfile(ctx context.Context, profile Profile) (Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(Profile), args.Error(1)
}
func (m *MockRepository) ListProfiles(ctx context.Context, ids []string) ([]Profile, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Profile), args.Error(1)
}
func (m *MockRepository) GetRoom(ctx context.Context, id string) (Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) ListActiveRooms(ctx context.Context, country string) ([]Room, error) {
	args := m.Called(ctx, country)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRepository) ListRoomsForUser(ctx context.Context, userId string) ([]Room, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRepository) ListMembershipRoomIds(ctx context.Context, userId string) ([]string, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockRepository) MembershipExists(ctx context.Context, roomId, userId string) (bool, error) {
	args := m.Called(ctx, roomId, userId)
	return args.Bool(0), args.Error(1)
}
func (m *MockRepository) CreateMembership(ctx context.Context, roomId, userId string) error {
	args := m.Called(ctx, roomId, userId)
	return args.Error(0)
}
func (m *MockRepository) SeedRooms(ctx context.Context, rooms []Room) (int, error) {
	args := m.Called(ctx, rooms)
	return args.Int(0), args.Error(1)
}
func (m *MockRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) GetMessage(ctx context.Context, id string) (Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockRepository) GetMessages(ctx context.Context, roomId string, limit int) ([]Message, error) {
	args := m.Called(ctx, roomId, limit)
	return args.Get(0).([]Message), args.Error(1)
}
