// Package store provides the chat server persistence layer.
//
// This package implements the Store interface for managing accounts, token
// hashes, friend relations, and message history.
//
// Three backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (shared-database deployments)
//   - BadgerDB (embedded key-value, in the badger subpackage)
package store

import (
	"context"
	"time"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// Store is the persistence interface consumed by server sessions and the
// account management CLI.
//
// Thread Safety: implementations must be safe for concurrent use from
// multiple goroutines; every server session shares one Store.
type Store interface {
	// ============================================
	// SCHEMA
	// ============================================

	// EnsureTables creates or migrates the schema. Idempotent; called at
	// startup before the listener is opened.
	EnsureTables(ctx context.Context) error

	// ============================================
	// ACCOUNT OPERATIONS
	// ============================================

	// AddUser creates an account and returns the plaintext token exactly
	// once. The token is never recoverable afterwards; only its SHA-512 is
	// stored. Username length policy is reported through the result value,
	// not through the error.
	// Returns models.ErrDuplicateUser if the username is taken.
	AddUser(ctx context.Context, username string) (token string, result models.AddUserResult, err error)

	// GetUser returns an account by username.
	// Returns models.ErrUserNotFound if the account doesn't exist.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// ListUsers returns all accounts.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// DeleteUser removes an account by username.
	// Returns models.ErrUserNotFound if the account doesn't exist.
	DeleteUser(ctx context.Context, username string) error

	// CheckToken resolves a plaintext token to its owner.
	// ok is false when no account matches; that is not an error.
	CheckToken(ctx context.Context, token string) (username string, ok bool, err error)

	// CheckUserExists reports whether an account exists.
	CheckUserExists(ctx context.Context, username string) (bool, error)

	// ============================================
	// RELATION OPERATIONS
	// ============================================

	// AllRelations returns every relation row owned by username, in other
	// words rows whose first_user column equals username.
	AllRelations(ctx context.Context, username string) ([]*models.Relation, error)

	// GetRelation returns the directed (first, secondary) row.
	// Returns models.ErrRelationNotFound if no such row exists.
	GetRelation(ctx context.Context, first, secondary string) (*models.Relation, error)

	// AddFriend records that from considers to a friend. Both mirror rows
	// are upserted in one transaction: (from,to).first_is_friend and
	// (to,from).secondary_is_friend become true; rows created on demand
	// carry false for the remaining booleans.
	// Returns false when from == to or when to does not exist. Those are
	// application outcomes, not errors.
	AddFriend(ctx context.Context, from, to string) (bool, error)

	// RemoveFriend clears the two mirror friendship booleans set by
	// AddFriend. Same preconditions and outcome reporting as AddFriend.
	RemoveFriend(ctx context.Context, from, to string) (bool, error)

	// ============================================
	// MESSAGE OPERATIONS
	// ============================================

	// AddMessage appends a message stamped with the current time and
	// returns the stored row.
	AddMessage(ctx context.Context, sender, receiver, content string) (*models.Message, error)

	// MessagesBetween returns all messages exchanged between the unordered
	// pair {a, b} with time_sent at or after since, oldest first. Pass the
	// Unix epoch to fetch the full history.
	MessagesBetween(ctx context.Context, a, b string, since time.Time) ([]*models.Message, error)

	// ============================================
	// HEALTH & LIFECYCLE
	// ============================================

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
