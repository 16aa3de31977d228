package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/feed"
	"github.com/mapleins/community/internal/guides"
	"github.com/mapleins/community/internal/onboarding"
	"github.com/mapleins/community/internal/types"
	"github.com/mapleins/community/internal/waitlist"
)

const (
	maxMessageLimit  = 100
	maxMessageLength = 4000
)

type CreateMessageRequest struct {
	Text string `json:"text"`
}

type MembershipResponse struct {
	Member bool `json:"member"`
}

type OnboardingResponse struct {
	Profile types.Profile `json:"profile"`
	Joined  []types.Room  `json:"joined"`
}

func (s *App) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("json encode", zap.Error(err))
	}
}

func (s *App) writeError(w http.ResponseWriter, errResp *ApiError) {
	s.writeJson(w, errResp.StatusCode, errResp)
}

// lookupError maps a missing row to notFound and everything else to a 500.
func lookupError(err error, notFound *ApiError) *ApiError {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return NewInternalServerError(err)
}

func (s *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.log.Error("health check", zap.Error(err))
		s.writeError(w, NewInternalServerError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *App) getOwnProfile(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	profile, err := s.db.GetProfile(r.Context(), userId)
	if err != nil {
		s.writeError(w, lookupError(err, NewNotFoundError()))
		return
	}

	s.writeJson(w, http.StatusOK, toProfile(profile))
}

func (s *App) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	var req onboarding.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	res, err := s.onboarding.Complete(r.Context(), userId, req)
	if err != nil {
		var vErr *onboarding.ValidationError
		switch {
		case errors.As(err, &vErr):
			s.writeError(w, NewValidationError(vErr.Message))
		case errors.Is(err, onboarding.ErrUsernameTaken):
			s.writeError(w, NewConflictError(err.Error()))
		default:
			s.log.Error("complete onboarding", zap.Error(err), zap.String("user_id", userId))
			s.writeError(w, NewInternalServerError(err))
		}
		return
	}

	s.writeJson(w, http.StatusOK, OnboardingResponse{
		Profile: toProfile(res.Profile),
		Joined:  toRooms(res.Joined),
	})
}

func (s *App) listProfiles(w http.ResponseWriter, r *http.Request) {
	ids := lo.Uniq(lo.Filter(r.URL.Query()["id"], func(id string, _ int) bool {
		return uuid.Validate(id) == nil
	}))

	profiles, err := s.db.ListProfiles(r.Context(), ids)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, lo.Map(profiles, func(p database.Profile, _ int) types.Sender {
		return toProfile(p).Sender()
	}))
}

func (s *App) getProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		s.writeError(w, NewNotFoundError())
		return
	}

	profile, err := s.db.GetProfile(r.Context(), id)
	if err != nil {
		s.writeError(w, lookupError(err, NewNotFoundError()))
		return
	}

	s.writeJson(w, http.StatusOK, toProfile(profile).Sender())
}

func (s *App) listRooms(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	rooms, err := s.db.ListRoomsForUser(r.Context(), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toRooms(rooms))
}

func (s *App) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.db.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, lookupError(err, NewNotFoundError()))
		return
	}

	s.writeJson(w, http.StatusOK, toRoom(room))
}

func (s *App) joinRoom(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	room, err := s.db.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, lookupError(err, NewNotFoundError()))
		return
	}

	if !room.IsActive {
		s.writeError(w, NewNotFoundError())
		return
	}

	if err := s.db.CreateMembership(r.Context(), room.Id, userId); err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toRoom(room))
}

func (s *App) getMembership(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	member, err := s.db.MembershipExists(r.Context(), chi.URLParam(r, "id"), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, MembershipResponse{Member: member})
}

// requireMember reports whether the caller belongs to the room, writing the
// error response when not.
func (s *App) requireMember(w http.ResponseWriter, r *http.Request, roomId string) bool {
	userId, _ := UserId(r.Context())

	member, err := s.db.MembershipExists(r.Context(), roomId, userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return false
	}
	if !member {
		s.writeError(w, NewForbiddenError())
		return false
	}

	return true
}

func (s *App) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "id")

	limit := maxMessageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, NewValidationError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxMessageLimit)
	}

	if !s.requireMember(w, r, roomId) {
		return
	}

	msgs, err := s.db.GetMessages(r.Context(), roomId, limit)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toMessages(msgs))
}

func (s *App) createMessage(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())
	roomId := chi.URLParam(r, "id")

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, NewBadRequestError())
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeError(w, NewValidationError("message text is required"))
		return
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		s.writeError(w, NewValidationError("message is too long"))
		return
	}

	if !s.requireMember(w, r, roomId) {
		return
	}

	msg, err := s.db.CreateMessage(r.Context(), database.CreateMessageParams{
		Id:       uuid.NewString(),
		RoomId:   roomId,
		SenderId: userId,
		Text:     text,
	})
	if err != nil {
		s.log.Error("create message", zap.Error(err), zap.String("room_id", roomId))
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusCreated, toMessage(msg))
}

// currentProfile resolves the optional caller profile. Anonymous callers and
// callers without a profile both yield nil.
func (s *App) currentProfile(r *http.Request) *database.Profile {
	userId, ok := s.identity(r)
	if !ok {
		return nil
	}

	profile, err := s.db.GetProfile(r.Context(), userId)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("guide profile lookup", zap.Error(err), zap.String("user_id", userId))
		}
		return nil
	}

	return &profile
}

func (s *App) getGuide(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, guides.Build(guides.LocationFrom(s.currentProfile(r))))
}

func (s *App) submitWaitlist(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, NewValidationError("invalid request body"))
		return
	}

	err := s.waitlist.Submit(r.Context(), raw)
	if err != nil {
		var sinkErr *waitlist.SinkError
		switch {
		case errors.Is(err, waitlist.ErrEmailRequired), errors.Is(err, waitlist.ErrInvalidEmail):
			s.writeError(w, NewValidationError(err.Error()))
		case errors.Is(err, waitlist.ErrNotConfigured):
			s.writeError(w, NewInternalServerError(err))
		case errors.As(err, &sinkErr):
			s.writeError(w, NewBadGatewayError(err))
		default:
			s.writeError(w, NewInternalServerError(err))
		}
		return
	}

	s.writeJson(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("error upgrading connection", zap.Error(err))
		return
	}

	client := feed.NewClient(userId, conn, s.hub, s.log.Named("feed"))
	if !s.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}
