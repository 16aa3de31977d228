package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/types"
)

const (
	defaultJwtExpiration = 24 * time.Hour
	tokenCookieKey       = "token"
	minPasswordLength    = 6

	userIdClaim = "user-id"
	expClaim    = "exp"

	uniqueViolation = "23505"
)

var validate = validator.New()

type CredentialsRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (s *App) createJwtForSession(userId string, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		expClaim:    time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *App) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func (s *App) extractUserIdFromToken(tokenString string) (string, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(string)
	if !ok || userId == "" {
		return "", fmt.Errorf("invalid user id claim")
	}

	return userId, nil
}

// identity resolves the caller from the session cookie. It never caches.
func (s *App) identity(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(tokenCookieKey)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	userId, err := s.extractUserIdFromToken(cookie.Value)
	if err != nil {
		s.log.Debug("failed to extract user id from token", zap.Error(err))
		return "", false
	}

	return userId, true
}

func createJwtCookie(tokenString string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieKey,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func decodeCredentials(r *http.Request) (CredentialsRequest, *ApiError) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, NewBadRequestError()
	}

	req.EmailAddress = strings.ToLower(strings.TrimSpace(req.EmailAddress))
	if req.EmailAddress == "" || req.Password == "" {
		return req, NewValidationError("email address and password are required")
	}
	if err := validate.Var(req.EmailAddress, "email"); err != nil {
		return req, NewValidationError("please enter a valid email address")
	}

	return req, nil
}

func (s *App) startSession(w http.ResponseWriter, userId string) error {
	token, err := s.createJwtForSession(userId, defaultJwtExpiration)
	if err != nil {
		return err
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))
	return nil
}

func (s *App) signup(w http.ResponseWriter, r *http.Request) {
	req, errResp := decodeCredentials(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if len(req.Password) < minPasswordLength {
		errResp := NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	account, err := s.db.CreateAccount(r.Context(), database.CreateAccountParams{
		Id:           uuid.NewString(),
		EmailAddress: req.EmailAddress,
		PasswordHash: pwdHash,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			errResp := NewConflictError("an account with this email already exists")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		s.log.Error("create account", zap.Error(err))
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.startSession(w, account.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, toUser(account))
}

func (s *App) signin(w http.ResponseWriter, r *http.Request) {
	req, errResp := decodeCredentials(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	account, err := s.db.GetAccountByEmail(r.Context(), req.EmailAddress)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(account.PasswordHash, req.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.startSession(w, account.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toUser(account))
}

func (s *App) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	account, err := s.db.GetAccountById(r.Context(), userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toUser(account))
}

func (s *App) logout(w http.ResponseWriter, _ *http.Request) {
	// an expired cookie makes the browser drop the session
	http.SetCookie(w, createJwtCookie("", -time.Hour))
	w.WriteHeader(http.StatusNoContent)
}

func toUser(a database.Account) types.User {
	return types.User{
		Id:           a.Id,
		EmailAddress: a.EmailAddress,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
