package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user, assigned on creation.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user. It is
	// immutable after registration and doubles as the ownership key on
	// blog posts.
	Username string `json:"username" db:"username"`

	// Email is the user's email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// The string is algorithm-tagged ("$argon2id$..." or a legacy "$2..."
	// bcrypt hash) and may be rewritten in place when a login triggers a
	// hash upgrade. This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
