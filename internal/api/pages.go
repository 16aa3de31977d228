package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/geo"
	"github.com/mapleins/community/internal/guides"
	"github.com/mapleins/community/internal/onboarding"
	"github.com/mapleins/community/internal/waitlist"
)

const locationUnset = "Your location isn't fully set yet"

type appPageData struct {
	Name      string
	Username  string
	RoleLabel string
	Location  string
}

type roomsPageData struct {
	Rooms []database.Room
}

type onboardingPageData struct {
	Countries   []string
	IndiaStates []string
	Provinces   []string
	Cities      []string
	Roles       []string
	Reasons     []string
}

type waitlistPageData struct {
	Roles []string
}

type guidesPageData struct {
	Guide guides.Guide
}

func (s *App) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.Render(w, name, data); err != nil {
		s.log.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *App) landingPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, "landing", nil)
}

func (s *App) waitlistPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "waitlist", waitlistPageData{Roles: waitlist.Roles})
}

func (s *App) signInPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "signin", nil)
}

func (s *App) onboardingPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identity(r); !ok {
		http.Redirect(w, r, "/auth/sign-in", http.StatusSeeOther)
		return
	}

	s.render(w, "onboarding", onboardingPageData{
		Countries:   geo.Countries,
		IndiaStates: geo.IndiaStates,
		Provinces:   geo.Provinces,
		Cities:      geo.AllCities(),
		Roles:       onboarding.Roles,
		Reasons:     onboarding.Reasons,
	})
}

func (s *App) appPage(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	s.render(w, "app", newAppPageData(profile))
}

func (s *App) roomsPage(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	rooms, err := s.db.ListRoomsForUser(r.Context(), userId)
	if err != nil {
		s.log.Error("list rooms for page", zap.Error(err), zap.String("user_id", userId))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "rooms", roomsPageData{Rooms: rooms})
}

func (s *App) guidesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "guides", guidesPageData{Guide: guides.Build(guides.LocationFrom(s.currentProfile(r)))})
}

func newAppPageData(p database.Profile) appPageData {
	roleLabel := "Member"
	if role := strings.TrimSpace(p.Role); role != "" {
		roleLabel = strings.ToUpper(role[:1]) + role[1:]
	}

	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = roleLabel
	}

	return appPageData{
		Name:      name,
		Username:  p.Username,
		RoleLabel: roleLabel,
		Location:  locationText(p),
	}
}

// locationText joins city, province and country, preferring where the person
// is now over where they are headed.
func locationText(p database.Profile) string {
	parts := []string{p.CurrentCity, p.CurrentProvince, p.CurrentCountry}
	if strings.TrimSpace(p.CurrentCountry) == "" {
		parts = []string{p.ToCity, p.ToProvince, p.ToCountry}
	}

	var out []string
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return locationUnset
	}

	return strings.Join(out, ", ")
}
