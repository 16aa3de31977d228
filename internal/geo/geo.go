// Package geo holds the V1 geography: the destination provinces and cities
// the community launches with, and the origin states offered at onboarding.
package geo

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/mapleins/community/internal/database"
)

const (
	Canada = "Canada"
	India  = "India"
)

var Countries = []string{India, Canada}

// Provinces lists the V1 destination provinces in display order.
var Provinces = []string{"Quebec", "Ontario", "Alberta", "British Columbia"}

var provinceCities = map[string][]string{
	"Quebec":           {"Montreal"},
	"Ontario":          {"Toronto", "Brampton"},
	"Alberta":          {"Calgary", "Edmonton"},
	"British Columbia": {"Vancouver", "Surrey"},
}

var IndiaStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu", "Telangana",
	"Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal", "Delhi",
	"Jammu and Kashmir", "Ladakh",
}

// Cities returns the V1 cities of a province, nil for unknown provinces.
func Cities(province string) []string {
	return slices.Clone(provinceCities[province])
}

// AllCities returns every V1 city in province display order.
func AllCities() []string {
	return lo.FlatMap(Provinces, func(p string, _ int) []string {
		return provinceCities[p]
	})
}

// ProvinceOf returns the province a V1 city belongs to. Matching ignores case
// and surrounding whitespace.
func ProvinceOf(city string) (string, bool) {
	city = strings.TrimSpace(city)
	for _, p := range Provinces {
		for _, c := range provinceCities[p] {
			if strings.EqualFold(c, city) {
				return p, true
			}
		}
	}
	return "", false
}

func IsV1City(city string) bool {
	_, ok := ProvinceOf(city)
	return ok
}

// CatalogRooms returns the active rooms of the V1 launch: one country room,
// one per province and one per city. Ids are left empty for the store to
// assign.
func CatalogRooms() []database.Room {
	rooms := []database.Room{{
		Name:     Canada,
		Type:     database.RoomTypeCountry,
		Country:  Canada,
		IsActive: true,
	}}

	for _, p := range Provinces {
		rooms = append(rooms, database.Room{
			Name:     p,
			Type:     database.RoomTypeProvince,
			Country:  Canada,
			Province: p,
			IsActive: true,
		})
	}

	for _, p := range Provinces {
		for _, c := range provinceCities[p] {
			rooms = append(rooms, database.Room{
				Name:     c,
				Type:     database.RoomTypeCity,
				Country:  Canada,
				Province: p,
				City:     c,
				IsActive: true,
			})
		}
	}

	return rooms
}
