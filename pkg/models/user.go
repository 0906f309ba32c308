package models

import (
	"crypto/sha512"
	"fmt"
)

// User is a chat account. The plaintext token exists only in the moment of
// creation; every row carries nothing but its SHA-512.
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Username  string `gorm:"uniqueIndex;not null;size:255" json:"username"`
	TokenHash []byte `gorm:"not null" json:"token_hash"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Validate checks structural integrity of the row. Username length policy
// lives in the store, which knows the configured bounds.
func (u *User) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("user: %w", ErrEmptyUsername)
	}
	if len(u.TokenHash) != sha512.Size {
		return fmt.Errorf("user %q: token hash is %d byte(s), want %d",
			u.Username, len(u.TokenHash), sha512.Size)
	}
	return nil
}

// HashToken derives the stored form of a plaintext token.
func HashToken(token string) []byte {
	sum := sha512.Sum512([]byte(token))
	return sum[:]
}

// AddUserResult is the outcome of an account creation attempt.
type AddUserResult int

const (
	// AddUserSuccess means the account was created and a token issued.
	AddUserSuccess AddUserResult = iota
	// AddUserTooShort means the username is under the configured minimum.
	AddUserTooShort
	// AddUserTooLong means the username is over the configured maximum.
	AddUserTooLong
)

func (r AddUserResult) String() string {
	switch r {
	case AddUserSuccess:
		return "success"
	case AddUserTooShort:
		return "too_short"
	case AddUserTooLong:
		return "too_long"
	default:
		return fmt.Sprintf("AddUserResult(%d)", int(r))
	}
}
