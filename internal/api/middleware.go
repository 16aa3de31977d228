package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lucsky/cuid"
	"go.uber.org/zap"
)

const headerRequestId = "X-Request-Id"

func (s *App) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Error("panic", zap.Error(panicError), zap.String("path", r.URL.Path))
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *App) requestTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(headerRequestId)
		if requestId == "" {
			requestId = cuid.New()
		}
		w.Header().Set(headerRequestId, requestId)

		s.log.Debug("request",
			zap.String("request_id", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(WithRequestId(r.Context(), requestId)))
	})
}

func (s *App) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId, ok := s.identity(r)
		if !ok {
			errResp := NewUnauthorizedError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		ctx := WithUserId(r.Context(), userId)
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionGuard protects pages. Identity is resolved on every request; without
// one the visitor is sent to sign in, without a profile to onboarding.
func (s *App) sessionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId, ok := s.identity(r)
		if !ok {
			http.Redirect(w, r, "/auth/sign-in", http.StatusSeeOther)
			return
		}

		profile, err := s.db.GetProfile(r.Context(), userId)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
				return
			}
			s.log.Error("session guard profile lookup", zap.Error(err), zap.String("user_id", userId))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		ctx := withProfile(WithUserId(r.Context(), userId), profile)
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
