package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mapleins/community/internal/config"
	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/stats"
	"github.com/mapleins/community/internal/testutil"
	"github.com/mapleins/community/internal/waitlist"
	"github.com/mapleins/community/internal/web"
)

const (
	testUserId = "5b0c7d0e-8a4b-4f3e-9d7a-2f1e6c3b9a10"
	testRoomId = "room-toronto"
)

type sinkFunc func(ctx context.Context, p waitlist.Payload) error

func (f sinkFunc) Forward(ctx context.Context, p waitlist.Payload) error {
	return f(ctx, p)
}

type testAppOption func(*config.Config)

func withLandingOnly(cfg *config.Config) {
	cfg.LandingOnly = true
}

func newTestApp(t *testing.T, repo *database.MockRepository, sink waitlist.Sink, opts ...testAppOption) *App {
	t.Helper()

	cfg := &config.Config{
		ServerAddr:     ":0",
		SigningKey:     []byte("test-signing-key"),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pages, err := web.NewTemplateCache()
	require.NoError(t, err)

	logger := testutil.TestLogger(t)
	wl := waitlist.NewService(sink, logger, stats.NopStats{})

	return NewApp(logger, nil, repo, wl, pages, stats.NopStats{}, cfg)
}

// authedRequest attaches a valid session cookie for userId.
func authedRequest(t *testing.T, app *App, req *http.Request, userId string) *http.Request {
	t.Helper()

	token, err := app.createJwtForSession(userId, time.Hour)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})
	return req
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)
	return rr
}

// findCookie is a helper function to find a cookie by name in the response recorder.
func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
