package models

import "errors"

// Common errors for account and social graph operations.
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
	ErrEmptyUsername = errors.New("username is empty")

	// Relation errors
	ErrRelationNotFound = errors.New("relation not found")
	ErrSelfRelation     = errors.New("cannot relate a user to itself")

	// Message errors
	ErrMessageNotFound = errors.New("message not found")
)
