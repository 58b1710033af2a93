package entity

import "time"

// User is a stored credential record.
type User struct {
	ID        int64
	Username  string
	Email     string
	Phone     string
	Password  string // hashed
	CreatedAt time.Time
}

// NewUser carries the fields needed to create a credential record. The
// password hash travels separately so it never sits in request-scoped
// structs longer than needed.
type NewUser struct {
	ID       int64
	Username string
	Email    string
	Phone    string
}

// Challenge is a one-time verification code issued against an identifier
// (email address or phone number). The identifier is stored exactly as the
// client supplied it; there is one live challenge per identifier.
type Challenge struct {
	Identifier string
	CodeHash   string
	Status     ChallengeStatus
	ExpiresAt  time.Time
}

// Expired reports whether the challenge is past its expiry at the given time.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
