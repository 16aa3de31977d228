// Package onboarding turns the onboarding form into a profile and joins the
// newcomer to the rooms of their destination.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mapleins/community/internal/database"
)

var ErrUsernameTaken = errors.New("this username is already taken, please choose another one")

const uniqueViolation = "23505"

type Result struct {
	Profile database.Profile
	Joined  []database.Room
}

type Service struct {
	repo   database.Repository
	logger *zap.Logger
}

func NewService(repo database.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Complete validates the request, stores the profile and, for people who are
// moving, joins their destination rooms. Joining is best effort and never
// fails the call.
func (s *Service) Complete(ctx context.Context, userId string, req Request) (Result, error) {
	req = req.Normalize()
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	taken, err := s.repo.UsernameTaken(ctx, req.Username, userId)
	if err != nil {
		return Result{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return Result{}, ErrUsernameTaken
	}

	profile, err := s.repo.UpsertProfile(ctx, BuildProfile(userId, req))
	if err != nil {
		// another onboarding claimed the username after the check
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return Result{}, ErrUsernameTaken
		}
		return Result{}, fmt.Errorf("upsert profile: %w", err)
	}

	res := Result{Profile: profile}
	if profile.IsMoving {
		res.Joined = s.autoJoin(ctx, profile)
	}

	return res, nil
}

// BuildProfile maps a normalized request to the stored profile. Fields that do
// not belong to the chosen mode are left empty.
func BuildProfile(userId string, req Request) database.Profile {
	p := database.Profile{
		Id:          userId,
		IsMoving:    req.Mode == ModeMoving,
		DisplayName: req.DisplayName,
		FullName:    req.FullName,
		Username:    req.Username,
		DateOfBirth: req.DateOfBirth,
		Role:        req.Role,
	}

	if p.IsMoving {
		p.FromCountry = req.FromCountry
		p.FromState = req.FromState
		p.ToCountry = req.ToCountry
		p.ToProvince = req.ToProvince
		p.ToCity = req.ToCity
		return p
	}

	p.Reasons = req.Reasons
	p.Phone = req.Phone
	p.CurrentCountry = req.CurrentCountry
	p.CurrentProvince = req.CurrentProvince
	p.CurrentCity = req.CurrentCity
	return p
}

// ResolveRooms picks the country, province and city rooms matching the
// profile's destination out of the active rooms, skipping rooms already
// joined and rooms that do not exist.
func ResolveRooms(p database.Profile, active []database.Room, joined mapset.Set) []database.Room {
	if p.ToCountry == "" || p.ToProvince == "" {
		return nil
	}

	var country, province, city *database.Room
	for i := range active {
		r := &active[i]
		if r.Country != p.ToCountry {
			continue
		}
		switch r.Type {
		case database.RoomTypeCountry:
			if country == nil {
				country = r
			}
		case database.RoomTypeProvince:
			if province == nil && r.Province == p.ToProvince {
				province = r
			}
		case database.RoomTypeCity:
			if city == nil && p.ToCity != "" && r.Province == p.ToProvince && r.City == p.ToCity {
				city = r
			}
		}
	}

	var rooms []database.Room
	for _, r := range []*database.Room{country, province, city} {
		if r == nil || joined.Contains(r.Id) {
			continue
		}
		rooms = append(rooms, *r)
		joined.Add(r.Id)
	}

	return rooms
}

func (s *Service) autoJoin(ctx context.Context, p database.Profile) []database.Room {
	log := s.logger.With(zap.String("user_id", p.Id))

	existing, err := s.repo.ListMembershipRoomIds(ctx, p.Id)
	if err != nil {
		log.Warn("list memberships for auto-join", zap.Error(err))
		existing = nil
	}

	joined := mapset.NewSet()
	for _, id := range existing {
		joined.Add(id)
	}

	active, err := s.repo.ListActiveRooms(ctx, p.ToCountry)
	if err != nil {
		log.Warn("list active rooms for auto-join", zap.Error(err))
		return nil
	}

	var added []database.Room
	for _, r := range ResolveRooms(p, active, joined) {
		if err := s.repo.CreateMembership(ctx, r.Id, p.Id); err != nil {
			log.Warn("auto-join room", zap.String("room_id", r.Id), zap.Error(err))
			continue
		}
		added = append(added, r)
	}

	if len(added) > 0 {
		log.Info("auto-joined rooms", zap.Int("count", len(added)))
	}

	return added
}
