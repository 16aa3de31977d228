package database

import "time"

const (
	RoomTypeCountry  = "country"
	RoomTypeProvince = "province"
	RoomTypeCity     = "city"
)

type Account struct {
	Id           string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Profile struct {
	Id              string
	IsMoving        bool
	DisplayName     string
	FullName        string
	Username        string
	DateOfBirth     string
	Role            string
	Reasons         string
	Phone           string
	FromCountry     string
	FromState       string
	ToCountry       string
	ToProvince      string
	ToCity          string
	CurrentCountry  string
	CurrentProvince string
	CurrentCity     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Room struct {
	Id       string
	Name     string
	Type     string
	Country  string
	Province string
	City     string
	IsActive bool
}

type Message struct {
	Id        string
	RoomId    string
	SenderId  string
	Text      string
	CreatedAt time.Time
}

type CreateAccountParams struct {
	Id           string
	EmailAddress string
	PasswordHash string
}

type CreateMessageParams struct {
	Id       string
	RoomId   string
	SenderId string
	Text     string
}
