package domain

import "time"

// User models an account that can authenticate against the service.
// Accounts are provisioned through the register endpoint; the login path
// treats them as read-only.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	Guest        bool      `json:"guest"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
