package models

import "time"

// User is a registered account. Users are referenced from rosters and
// expenses by ID only; the authentication layer owns this record.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized.
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"createdAt"`
}

// NewUser creates a user record with the current timestamp.
// The ID is assigned by the store on creation.
func NewUser(email, displayName, passwordHash string) *User {
	return &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
