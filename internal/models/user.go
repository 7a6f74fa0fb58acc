package models

import "time"

// User represents a registered account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the minimal projection returned to clients after login.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Public strips everything but the id and email.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}
