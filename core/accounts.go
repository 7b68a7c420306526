package core

import "context"

// UserRecord is a user row as stored. Token is nil until the first login and
// is replaced wholesale on every subsequent login.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	Token        *string
}

// ProfileRecord is the one-to-one profile row created with its user at
// registration and never mutated afterwards.
type ProfileRecord struct {
	ID        int64
	UserID    int64
	Email     string
	FirstName string
	LastName  *string
}

// UserWithProfile joins a user with its profile for the lookups that need
// both.
type UserWithProfile struct {
	UserRecord
	Profile ProfileRecord
}

// FullName joins first and last name with a single space. When the last name
// is absent the trailing space stays; clients rely on the exact formatting.
func (u *UserWithProfile) FullName() string {
	last := ""
	if u.Profile.LastName != nil {
		last = *u.Profile.LastName
	}
	return u.Profile.FirstName + " " + last
}

// AccountStore defines the persistence operations for users and profiles.
// Single-row lookups return ErrNotFound when nothing matches.
type AccountStore interface {
	FindUserByUsername(ctx context.Context, username string) (*UserWithProfile, error)
	FindProfileByEmail(ctx context.Context, email string) (*ProfileRecord, error)
	// CreateUserWithProfile inserts the user and its profile in one
	// transaction and returns the new user id.
	CreateUserWithProfile(ctx context.Context, username, passwordHash, email, firstName string, lastName *string) (int64, error)
	UpdateUserToken(ctx context.Context, userID int64, token string) error
	FindUserByToken(ctx context.Context, token string) (*UserRecord, error)
	FindUserWithProfileByID(ctx context.Context, id int64) (*UserWithProfile, error)
}
