// Package guides builds the relocation guide shown to a newcomer, narrowed to
// their role and V1 city when known.
package guides

import (
	"strings"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/geo"
)

type Item struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Block struct {
	Heading string `json:"heading"`
	Items   []Item `json:"items"`
}

type Section struct {
	Title  string  `json:"title"`
	Intro  string  `json:"intro"`
	Blocks []Block `json:"blocks"`
	Footer string  `json:"footer,omitempty"`
}

type Guide struct {
	RoleLabel string    `json:"role_label"`
	Focus     string    `json:"focus"`
	Note      string    `json:"note,omitempty"`
	Sections  []Section `json:"sections"`
}

// Location is where a person is, or is going.
type Location struct {
	Country  string
	Province string
	City     string
	Role     string
}

// LocationFrom prefers the current location over the destination. A nil
// profile yields a nil location.
func LocationFrom(p *database.Profile) *Location {
	if p == nil {
		return nil
	}
	return &Location{
		Country:  firstNonEmpty(p.CurrentCountry, p.ToCountry),
		Province: firstNonEmpty(p.CurrentProvince, p.ToProvince),
		City:     firstNonEmpty(p.CurrentCity, p.ToCity),
		Role:     p.Role,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func RoleLabel(role string) string {
	switch role {
	case "student", "worker", "visitor":
		return role
	}
	return "newcomer"
}

// Build assembles the guide for loc. With no location every section and
// block is included.
func Build(loc *Location) Guide {
	g := Guide{RoleLabel: "newcomer"}

	var (
		country, province, city string
		cityProvince            string
		inV1City                bool
	)
	if loc != nil {
		g.RoleLabel = RoleLabel(loc.Role)
		country, province, city = loc.Country, loc.Province, loc.City
		cityProvince, inV1City = geo.ProvinceOf(city)
	}

	g.Focus = focus(g.RoleLabel, city, province, country)
	if loc != nil && !inV1City && country != "" {
		g.Note = "For V1 we have detailed city guides for Toronto, Brampton, Montreal, Calgary, Edmonton, " +
			"Vancouver, and Surrey. You'll still see Canada-wide and province-level tips."
	}

	if loc == nil || strings.EqualFold(country, geo.Canada) {
		g.Sections = append(g.Sections, federalSection(loc))
	}

	showProvince := inV1City && strings.EqualFold(province, cityProvince)
	if loc == nil || showProvince {
		s := Section{
			Title: "2. Province-level tasks (ID, health, licence)",
			Intro: "Your province controls your health card, provincial ID, and driving licence. " +
				"Start these in the first few weeks.",
		}
		for _, p := range geo.Provinces {
			if loc == nil || p == cityProvince {
				s.Blocks = append(s.Blocks, provinceBlocks[p])
			}
		}
		g.Sections = append(g.Sections, s)
	}

	if loc == nil || inV1City {
		s := Section{
			Title:  "3. City-level basics (bus passes & SIM cards)",
			Intro:  "This is where day-to-day life happens: how you move around and which network keeps you online.",
			Footer: "We'll keep expanding these guides for more provinces and cities.",
		}
		for _, c := range geo.AllCities() {
			if loc == nil || strings.EqualFold(c, strings.TrimSpace(city)) {
				s.Blocks = append(s.Blocks, cityBlocks[c])
			}
		}
		g.Sections = append(g.Sections, s)
	}

	return g
}

func federalSection(loc *Location) Section {
	s := Section{
		Title: "1. Canada-wide documents (federal)",
		Intro: "These are things everyone should know about, but the exact steps depend on your role.",
	}

	role := ""
	if loc != nil {
		role = loc.Role
	}
	if b, ok := roleBlocks[role]; ok {
		s.Blocks = []Block{b}
		return s
	}

	for _, r := range roleOrder {
		s.Blocks = append(s.Blocks, roleBlocks[r])
	}
	return s
}

func focus(roleLabel, city, province, country string) string {
	place := strings.Join(nonEmpty(city, province, country), ", ")
	if place == "" {
		return "Written for Indian newcomers landing in Canada. Set your location in onboarding to see more specific guides."
	}
	return "Written for Indian newcomers landing in Canada, focused on your " + roleLabel + " journey in " + place + "."
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
