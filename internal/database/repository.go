package database

import "context"

type Repository interface {
	Ping(ctx context.Context) error
	CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error)
	GetAccountById(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	UsernameTaken(ctx context.Context, username, exceptId string) (bool, error)
	UpsertProfile(ctx context.Context, profile Profile) (Profile, error)
	ListProfiles(ctx context.Context, ids []string) ([]Profile, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListActiveRooms(ctx context.Context, country string) ([]Room, error)
	ListRoomsForUser(ctx context.Context, userId string) ([]Room, error)
	ListMembershipRoomIds(ctx context.Context, userId string) ([]string, error)
	MembershipExists(ctx context.Context, roomId, userId string) (bool, error)
	CreateMembership(ctx context.Context, roomId, userId string) error
	SeedRooms(ctx context.Context, rooms []Room) (int, error)
	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	GetMessage(ctx context.Context, id string) (Message, error)
	GetMessages(ctx context.Context, roomId string, limit int) ([]Message, error)
}
