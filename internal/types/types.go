package types

import (
	"time"
)

type User struct {
	Id           string    `json:"id"`
	EmailAddress string    `json:"email_address,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Profile struct {
	Id              string    `json:"id"`
	IsMoving        bool      `json:"is_moving"`
	DisplayName     string    `json:"display_name"`
	FullName        string    `json:"full_name"`
	Username        string    `json:"username"`
	DateOfBirth     string    `json:"date_of_birth"`
	Role            string    `json:"role"`
	Reasons         string    `json:"reasons,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	FromCountry     string    `json:"from_country,omitempty"`
	FromState       string    `json:"from_state,omitempty"`
	ToCountry       string    `json:"to_country,omitempty"`
	ToProvince      string    `json:"to_province,omitempty"`
	ToCity          string    `json:"to_city,omitempty"`
	CurrentCountry  string    `json:"current_country,omitempty"`
	CurrentProvince string    `json:"current_province,omitempty"`
	CurrentCity     string    `json:"current_city,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// Sender is the display-safe projection of a profile attached to messages.
type Sender struct {
	Id          string `json:"id,omitempty"`
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
}

func (p Profile) Sender() Sender {
	return Sender{
		Id:          p.Id,
		DisplayName: p.DisplayName,
		FullName:    p.FullName,
		Username:    p.Username,
	}
}

type Room struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Country  string `json:"country"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	IsActive bool   `json:"is_active"`
}

type Message struct {
	Id        string    `json:"id"`
	RoomId    string    `json:"room_id"`
	SenderId  string    `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
