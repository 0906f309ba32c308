package models

import "fmt"

// Relation is one directed row of the social graph. Friendship is symmetric
// and therefore mirrored across two rows; blocking is one-way and recorded
// only on the row whose first_user is the blocker.
type Relation struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// FirstUsername owns the row: AllRelations(user) selects rows whose
	// first_user equals the caller.
	FirstUsername     string `gorm:"column:first_user;not null;size:255;uniqueIndex:idx_relations_pair" json:"first_username"`
	SecondaryUsername string `gorm:"column:secondary_user;not null;size:255;uniqueIndex:idx_relations_pair" json:"secondary_username"`

	FirstIsFriend      Flag `gorm:"column:first_is_friend;not null" json:"first_is_friend"`
	SecondaryIsFriend  Flag `gorm:"column:secondary_is_friend;not null" json:"secondary_is_friend"`
	SecondaryIsBlocked Flag `gorm:"column:secondary_is_blocked;not null" json:"secondary_is_blocked"`
}

// TableName returns the table name for Relation.
func (Relation) TableName() string {
	return "relations"
}

// Validate checks structural integrity of the row.
func (r *Relation) Validate() error {
	if r.FirstUsername == "" || r.SecondaryUsername == "" {
		return fmt.Errorf("relation: %w", ErrEmptyUsername)
	}
	if r.FirstUsername == r.SecondaryUsername {
		return fmt.Errorf("relation %q: %w", r.FirstUsername, ErrSelfRelation)
	}
	return nil
}
