package onboarding

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mapleins/community/internal/geo"
)

const (
	ModeMoving = "moving"
	ModeLocal  = "local"

	DefaultRole    = "student"
	DefaultReasons = "help_newcomers"
)

var Roles = []string{"student", "worker", "pr", "visitor", "service_provider", "other"}

var Reasons = []string{"help_newcomers", "offer_services", "buy_sell", "just_explore"}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// ValidationError reports the first invalid field of a request in words fit
// for the person filling the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Request is the onboarding form. Field order matters: the first failing
// field is the one reported.
type Request struct {
	Mode        string `json:"mode" validate:"oneof=moving local"`
	FullName    string `json:"full_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name"`

	FromCountry string `json:"from_country" validate:"required_if=Mode moving"`
	FromState   string `json:"from_state" validate:"required_if=Mode moving"`
	ToCountry   string `json:"to_country" validate:"required_if=Mode moving"`
	ToProvince  string `json:"to_province" validate:"required_if=Mode moving"`
	ToCity      string `json:"to_city" validate:"required_if=Mode moving"`

	Role    string `json:"role" validate:"oneof=student worker pr visitor service_provider other"`
	Reasons string `json:"reasons" validate:"omitempty,oneof=help_newcomers offer_services buy_sell just_explore"`
	Phone   string `json:"phone"`

	CurrentCountry  string `json:"current_country"`
	CurrentProvince string `json:"current_province"`
	CurrentCity     string `json:"current_city"`
}

// Normalize trims every field, lower-cases the username and fills defaults.
func (r Request) Normalize() Request {
	n := Request{
		Mode:            strings.ToLower(strings.TrimSpace(r.Mode)),
		FullName:        strings.TrimSpace(r.FullName),
		DateOfBirth:     strings.TrimSpace(r.DateOfBirth),
		Username:        strings.ToLower(strings.TrimSpace(r.Username)),
		DisplayName:     strings.TrimSpace(r.DisplayName),
		FromCountry:     strings.TrimSpace(r.FromCountry),
		FromState:       strings.TrimSpace(r.FromState),
		ToCountry:       strings.TrimSpace(r.ToCountry),
		ToProvince:      strings.TrimSpace(r.ToProvince),
		ToCity:          strings.TrimSpace(r.ToCity),
		Role:            strings.TrimSpace(r.Role),
		Reasons:         strings.TrimSpace(r.Reasons),
		Phone:           strings.TrimSpace(r.Phone),
		CurrentCountry:  strings.TrimSpace(r.CurrentCountry),
		CurrentProvince: strings.TrimSpace(r.CurrentProvince),
		CurrentCity:     strings.TrimSpace(r.CurrentCity),
	}

	if n.DisplayName == "" {
		n.DisplayName = FirstName(n.FullName)
	}
	if n.Role == "" {
		n.Role = DefaultRole
	}
	if n.Mode == ModeLocal && n.Reasons == "" {
		n.Reasons = DefaultReasons
	}

	return n
}

// FirstName returns the first whitespace separated token of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Validate checks a normalized request.
func Validate(r Request) error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(verrs[0])
		}
		return err
	}

	if r.Mode == ModeMoving && strings.EqualFold(r.ToCountry, geo.Canada) {
		if !slices.Contains(geo.Cities(r.ToProvince), r.ToCity) {
			return &ValidationError{
				Field:   "to_city",
				Message: "please pick a destination city from the list for your province",
			}
		}
	}

	return nil
}

func describe(fe validator.FieldError) *ValidationError {
	switch fe.Field() {
	case "Mode":
		return &ValidationError{Field: "mode", Message: "please choose whether you are moving or already local"}
	case "FullName":
		return &ValidationError{Field: "full_name", Message: "please enter your full name"}
	case "DateOfBirth":
		if fe.Tag() == "datetime" {
			return &ValidationError{Field: "date_of_birth", Message: "date of birth must look like YYYY-MM-DD"}
		}
		return &ValidationError{Field: "date_of_birth", Message: "please enter your date of birth"}
	case "Username":
		if fe.Tag() == "username" {
			return &ValidationError{
				Field:   "username",
				Message: "username can only contain letters, numbers, and underscores, no spaces",
			}
		}
		return &ValidationError{Field: "username", Message: "please enter a username"}
	case "FromCountry", "FromState":
		return &ValidationError{Field: "from", Message: "please select your hometown country and province"}
	case "ToCountry", "ToProvince", "ToCity":
		return &ValidationError{Field: "to", Message: "please fill your destination country, province, and city"}
	case "Role":
		return &ValidationError{Field: "role", Message: "please choose one of the listed roles"}
	case "Reasons":
		return &ValidationError{Field: "reasons", Message: "please choose what brings you here"}
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: "invalid " + strings.ToLower(fe.Field())}
}
