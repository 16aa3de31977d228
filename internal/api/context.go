package api

import (
	"context"

	"github.com/mapleins/community/internal/database"
)

type contextKey string

const (
	userIdKey    contextKey = "user-id"
	requestIdKey contextKey = "request-id"
	profileKey   contextKey = "profile"
)

func WithUserId(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func UserId(ctx context.Context) (string, bool) {
	userId, ok := ctx.Value(userIdKey).(string)
	return userId, ok && userId != ""
}

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKey, requestId)
}

func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

func withProfile(ctx context.Context, p database.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func profileFrom(ctx context.Context) (database.Profile, bool) {
	p, ok := ctx.Value(profileKey).(database.Profile)
	return p, ok
}
