// Package user implements C5: signup with transactional email uniqueness,
// login, email confirmation, password reset and profile CRUD. Signup writes
// no nickname lock row, so nickname uniqueness is not enforced at write time.
package user

import "time"

// Status values for the user lifecycle (spec §3 Lifecycles).
const (
	StatusPendingConfirmation = "email_confirmation_pending"
	StatusActive              = "active"
)

// Role is the authorization role carried in the issued access token.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is the domain representation of a user profile row.
type User struct {
	ID                string
	Email             string
	EmailLower        string
	Nickname          string
	PasswordHash      string
	Country           string
	BirthDate         time.Time
	Status            string
	Role              string
	PasswordUpdatedAt time.Time
	ConfirmToken      string
	ConfirmExpiresAt  time.Time
	ResetToken        string
	ResetExpiresAt    time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SignupInput is the validated payload for Signup.
type SignupInput struct {
	Email     string
	Nickname  string
	Password  string
	Country   string
	BirthDate time.Time
}

// ProfileUpdate carries the whitelisted, owner-mutable profile fields.
type ProfileUpdate struct {
	Nickname *string
	Country  *string
}

// allowedCountries is the closed ISO-3166 alpha-2 allow-list named in the
// glossary. Kept small and explicit; extend as new markets launch.
var allowedCountries = map[string]bool{
	"US": true, "CA": true, "GB": true, "IE": true, "FR": true, "DE": true,
	"ES": true, "PT": true, "IT": true, "NL": true, "BE": true, "SE": true,
	"NO": true, "DK": true, "FI": true, "PL": true, "BR": true, "MX": true,
	"AR": true, "AU": true, "NZ": true, "JP": true, "IN": true, "ZA": true,
}

func isAllowedCountry(code string) bool {
	return allowedCountries[code]
}
