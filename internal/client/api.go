package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mapleins/community/internal/guides"
	"github.com/mapleins/community/internal/onboarding"
	"github.com/mapleins/community/internal/roomview"
	"github.com/mapleins/community/internal/types"
)

var (
	_ roomview.Identity      = (*Client)(nil)
	_ roomview.ProfileSource = (*Client)(nil)
	_ roomview.SenderSource  = (*Client)(nil)
	_ roomview.RoomSource    = (*Client)(nil)
	_ roomview.Feed          = (*Client)(nil)
)

type credentials struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type messagesQuery struct {
	Limit int `url:"limit,omitempty"`
}

type profilesQuery struct {
	Ids []string `url:"id"`
}

// WaitlistEntry is the public waitlist form.
type WaitlistEntry struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	City   string `json:"city,omitempty"`
	Intake string `json:"intake,omitempty"`
}

type OnboardingResult struct {
	Profile types.Profile `json:"profile"`
	Joined  []types.Room  `json:"joined"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (types.User, error) {
	var user types.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, credentials{email, password}, &user)
	return user, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (types.User, error) {
	var user types.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signin", nil, credentials{email, password}, &user)
	return user, err
}

func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

// CurrentUser reports who the stored session belongs to. An absent or
// rejected session is not an error.
func (c *Client) CurrentUser(ctx context.Context) (string, bool, error) {
	if c.Token() == "" {
		return "", false, nil
	}

	var user types.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, nil, &user); err != nil {
		if StatusCode(err) == http.StatusUnauthorized {
			return "", false, nil
		}
		return "", false, err
	}
	return user.Id, true, nil
}

func (c *Client) OwnProfile(ctx context.Context) (types.Profile, error) {
	var p types.Profile
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &p)
	return p, err
}

func (c *Client) Onboard(ctx context.Context, req onboarding.Request) (OnboardingResult, error) {
	var res OnboardingResult
	err := c.do(ctx, http.MethodPost, "/api/onboarding", nil, req, &res)
	return res, err
}

func (c *Client) Senders(ctx context.Context, ids []string) ([]types.Sender, error) {
	var senders []types.Sender
	err := c.do(ctx, http.MethodGet, "/api/profiles", profilesQuery{Ids: ids}, nil, &senders)
	return senders, err
}

func (c *Client) Sender(ctx context.Context, id string) (types.Sender, error) {
	var s types.Sender
	err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(id), nil, nil, &s)
	return s, err
}

func (c *Client) Rooms(ctx context.Context) ([]types.Room, error) {
	var rooms []types.Room
	err := c.do(ctx, http.MethodGet, "/api/rooms", nil, nil, &rooms)
	return rooms, err
}

func (c *Client) JoinRoom(ctx context.Context, roomId string) (types.Room, error) {
	var room types.Room
	err := c.do(ctx, http.MethodPost, "/api/rooms/"+url.PathEscape(roomId)+"/join", nil, nil, &room)
	return room, err
}

func (c *Client) Room(ctx context.Context, roomId string) (types.Room, error) {
	var room types.Room
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomId), nil, nil, &room)
	return room, err
}

func (c *Client) IsMember(ctx context.Context, roomId string) (bool, error) {
	var res struct {
		Member bool `json:"member"`
	}
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomId)+"/membership", nil, nil, &res)
	return res.Member, err
}

func (c *Client) Messages(ctx context.Context, roomId string, limit int) ([]types.Message, error) {
	var msgs []types.Message
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+url.PathEscape(roomId)+"/messages", messagesQuery{Limit: limit}, nil, &msgs)
	return msgs, err
}

func (c *Client) SendMessage(ctx context.Context, roomId, text string) (types.Message, error) {
	var msg types.Message
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	err := c.do(ctx, http.MethodPost, "/api/rooms/"+url.PathEscape(roomId)+"/messages", nil, body, &msg)
	return msg, err
}

func (c *Client) Guide(ctx context.Context) (guides.Guide, error) {
	var g guides.Guide
	err := c.do(ctx, http.MethodGet, "/api/guides", nil, nil, &g)
	return g, err
}

func (c *Client) JoinWaitlist(ctx context.Context, e WaitlistEntry) error {
	return c.do(ctx, http.MethodPost, "/api/waitlist", nil, e, nil)
}
