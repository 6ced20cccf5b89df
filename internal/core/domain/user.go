package domain

import "time"

// User models an account known to the auth collaborator. Privilege is not
// stored here: it lives in the role directory.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the signed-in actor behind a session.
type Identity struct {
	ActorID   string    `json:"actor_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
}
