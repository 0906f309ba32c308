// Package models defines the persistent records of the chat service: users
// with hashed tokens, directed relation rows, and immutable messages.
package models

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&Relation{},
		&Message{},
	}
}
