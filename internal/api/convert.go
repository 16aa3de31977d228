package api

import (
	"github.com/samber/lo"

	"github.com/mapleins/community/internal/database"
	"github.com/mapleins/community/internal/types"
)

func toProfile(p database.Profile) types.Profile {
	return types.Profile{
		Id:              p.Id,
		IsMoving:        p.IsMoving,
		DisplayName:     p.DisplayName,
		FullName:        p.FullName,
		Username:        p.Username,
		DateOfBirth:     p.DateOfBirth,
		Role:            p.Role,
		Reasons:         p.Reasons,
		Phone:           p.Phone,
		FromCountry:     p.FromCountry,
		FromState:       p.FromState,
		ToCountry:       p.ToCountry,
		ToProvince:      p.ToProvince,
		ToCity:          p.ToCity,
		CurrentCountry:  p.CurrentCountry,
		CurrentProvince: p.CurrentProvince,
		CurrentCity:     p.CurrentCity,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toRoom(r database.Room) types.Room {
	return types.Room{
		Id:       r.Id,
		Name:     r.Name,
		Type:     r.Type,
		Country:  r.Country,
		Province: r.Province,
		City:     r.City,
		IsActive: r.IsActive,
	}
}

// toRooms never returns nil so empty lists encode as [].
func toRooms(rooms []database.Room) []types.Room {
	return append([]types.Room{}, lo.Map(rooms, func(r database.Room, _ int) types.Room {
		return toRoom(r)
	})...)
}

func toMessage(m database.Message) types.Message {
	return types.Message{
		Id:        m.Id,
		RoomId:    m.RoomId,
		SenderId:  m.SenderId,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func toMessages(msgs []database.Message) []types.Message {
	return append([]types.Message{}, lo.Map(msgs, func(m database.Message, _ int) types.Message {
		return toMessage(m)
	})...)
}
