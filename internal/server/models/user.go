// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the identity every stored file is scoped to. PasswordHash is an
// opaque argon2id string; storage code never reads it.
type User struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
