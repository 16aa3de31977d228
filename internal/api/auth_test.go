package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/types"
)

func TestJwt(t *testing.T) {
	app := newTestApp(t, &database.MockRepository{}, nil)

	token, err := app.createJwtForSession(testUserId, time.Hour)
	require.NoError(t, err)

	userId, err := app.extractUserIdFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, testUserId, userId)

	expired, err := app.createJwtForSession(testUserId, -time.Hour)
	require.NoError(t, err)
	_, err = app.extractUserIdFromToken(expired)
	assert.Error(t, err, "expected expired token to be rejected")

	other := newTestApp(t, &database.MockRepository{}, nil)
	other.signingKey = []byte("another-key")
	_, err = other.extractUserIdFromToken(token)
	assert.Error(t, err, "expected token signed with another key to be rejected")
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, verifyPassword(hash, "secret1"))
	assert.False(t, verifyPassword(hash, "secret2"))
}

func TestSignup(t *testing.T) {
	tcases := []struct {
		name       string
		body       string
		mockSetup  func(m *database.MockRepository)
		statusCode int
		wantCookie bool
	}{
		{
			name: "created",
			body: `{"email_address":"  Asha@Example.com ","password":"secret1"}`,
			mockSetup: func(m *database.MockRepository) {
				m.On("CreateAccount", mock.Anything, mock.MatchedBy(func(p database.CreateAccountParams) bool {
					return p.EmailAddress == "asha@example.com" && p.Id != "" && verifyPassword(p.PasswordHash, "secret1")
				})).Return(database.Account{Id: testUserId, EmailAddress: "asha@example.com"}, nil).Once()
			},
			statusCode: http.StatusCreated,
			wantCookie: true,
		},
		{
			name:       "short password",
			body:       `{"email_address":"asha@example.com","password":"abc"}`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"email_address":"not-an-email","password":"secret1"}`,
			statusCode: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			statusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: `{"email_address":"asha@example.com","password":"secret1"}`,
			mockSetup: func(m *database.MockRepository) {
				m.On("CreateAccount", mock.Anything, mock.Anything).
					Return(database.Account{}, &pq.Error{Code: uniqueViolation}).Once()
			},
			statusCode: http.StatusConflict,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &database.MockRepository{}
			defer repo.AssertExpectations(t)
			if tc.mockSetup != nil {
				tc.mockSetup(repo)
			}

			app := newTestApp(t, repo, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tc.body))
			rr := serve(app, req)

			assert.Equal(t, tc.statusCode, rr.Code)
			cookie := findCookie(rr, tokenCookieKey)
			if tc.wantCookie {
				require.NotNil(t, cookie, "expected session cookie")
				assert.True(t, cookie.HttpOnly)
				assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

				var user types.User
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
				assert.Equal(t, testUserId, user.Id)
			} else {
				assert.Nil(t, cookie)
			}
		})
	}
}

func TestSignin(t *testing.T) {
	hash, err := hashPassword("secret1")
	require.NoError(t, err)
	account := database.Account{Id: testUserId, EmailAddress: "asha@example.com", PasswordHash: hash}

	tcases := []struct {
		name       string
		password   string
		lookupErr  error
		statusCode int
	}{
		{name: "valid credentials", password: "secret1", statusCode: http.StatusOK},
		{name: "wrong password", password: "secret2", statusCode: http.StatusUnauthorized},
		{name: "unknown email", password: "secret1", lookupErr: sql.ErrNoRows, statusCode: http.StatusUnauthorized},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &database.MockRepository{}
			defer repo.AssertExpectations(t)
			repo.On("GetAccountByEmail", mock.Anything, "asha@example.com").Return(account, tc.lookupErr).Once()

			app := newTestApp(t, repo, nil)
			body := `{"email_address":"Asha@example.com","password":"` + tc.password + `"}`
			rr := serve(app, httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(body)))

			assert.Equal(t, tc.statusCode, rr.Code)
			if tc.statusCode == http.StatusOK {
				cookie := findCookie(rr, tokenCookieKey)
				require.NotNil(t, cookie)
				userId, err := app.extractUserIdFromToken(cookie.Value)
				require.NoError(t, err)
				assert.Equal(t, testUserId, userId)
				assert.NotContains(t, rr.Body.String(), "password")
			}
		})
	}
}

func TestSession(t *testing.T) {
	repo := &database.MockRepository{}
	defer repo.AssertExpectations(t)
	repo.On("GetAccountById", mock.Anything, testUserId).
		Return(database.Account{Id: testUserId, EmailAddress: "asha@example.com"}, nil).Once()

	app := newTestApp(t, repo, nil)

	rr := serve(app, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "expected 401 without a session")

	req := authedRequest(t, app, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), testUserId)
	rr = serve(app, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, private", rr.Header().Get("Cache-Control"))

	var user types.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
	assert.Equal(t, "asha@example.com", user.EmailAddress)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, &database.MockRepository{}, nil)

	rr := serve(app, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	cookie := findCookie(rr, tokenCookieKey)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()), "expected cookie to be expired")
}
