// Package waitlist validates waitlist signups and forwards them to an
// external sink.
package waitlist

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/stats"
)

const (
	Country = "India"
	Source  = "waitlist_page"
)

var Roles = []string{"student", "worker", "visitor", "other"}

var (
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidEmail  = errors.New("please enter a valid email address")
	ErrNotConfigured = errors.New("waitlist is not configured, please try again later")
)

var validate = validator.New()

type Entry struct {
	Email  string
	Name   string
	Role   string
	City   string
	Intake string
}

// Payload is the row forwarded to the sink.
type Payload struct {
	Timestamp string `json:"timestamp"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	City      string `json:"city"`
	Intake    string `json:"intake"`
	Country   string `json:"country"`
	Source    string `json:"source"`
}

func (p Payload) Row() []any {
	return []any{p.Timestamp, p.Email, p.Name, p.Role, p.City, p.Intake, p.Country, p.Source}
}

type Sink interface {
	Forward(ctx context.Context, p Payload) error
}

func stringField(raw map[string]any, key string) string {
	s, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Normalize extracts an entry from a decoded JSON body. Values of the wrong
// type are treated as absent.
func Normalize(raw map[string]any) (Entry, error) {
	email := strings.ToLower(stringField(raw, "email"))
	if email == "" {
		return Entry{}, ErrEmailRequired
	}
	if err := validate.Var(email, "email"); err != nil {
		return Entry{}, ErrInvalidEmail
	}

	role, _ := raw["role"].(string)
	if !slices.Contains(Roles, role) {
		role = "other"
	}

	return Entry{
		Email:  email,
		Name:   stringField(raw, "name"),
		Role:   role,
		City:   stringField(raw, "city"),
		Intake: stringField(raw, "intake"),
	}, nil
}

func NewPayload(e Entry, now time.Time) Payload {
	return Payload{
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Email:     e.Email,
		Name:      e.Name,
		Role:      e.Role,
		City:      e.City,
		Intake:    e.Intake,
		Country:   Country,
		Source:    Source,
	}
}

// SinkError wraps a failure reported by the sink.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return "forward waitlist entry: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

type Service struct {
	sink   Sink
	logger *zap.Logger
	stats  stats.StatsProvider
	now    func() time.Time
}

// NewService returns a service forwarding to sink. A nil sink makes every
// submission fail with ErrNotConfigured.
func NewService(sink Sink, logger *zap.Logger, statsProvider stats.StatsProvider) *Service {
	return &Service{
		sink:   sink,
		logger: logger,
		stats:  statsProvider,
		now:    time.Now,
	}
}

// Submit validates raw and forwards it exactly once.
func (s *Service) Submit(ctx context.Context, raw map[string]any) error {
	entry, err := Normalize(raw)
	if err != nil {
		return err
	}

	if s.sink == nil {
		s.logger.Error("waitlist sink is not configured")
		return ErrNotConfigured
	}

	if err := s.sink.Forward(ctx, NewPayload(entry, s.now())); err != nil {
		s.logger.Error("waitlist sink failed", zap.Error(err))
		return &SinkError{Err: err}
	}

	s.stats.Incr(stats.NumWaitlistForwarded)
	return nil
}
