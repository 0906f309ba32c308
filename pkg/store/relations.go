package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// AllRelations returns every row owned by username (first_user == username).
func (s *GORMStore) AllRelations(ctx context.Context, username string) ([]*models.Relation, error) {
	var relations []*models.Relation
	if err := s.db.WithContext(ctx).Where("first_user = ?", username).Find(&relations).Error; err != nil {
		return nil, err
	}
	return relations, nil
}

// GetRelation returns the directed (first, secondary) row.
func (s *GORMStore) GetRelation(ctx context.Context, first, secondary string) (*models.Relation, error) {
	var relation models.Relation
	if err := s.db.WithContext(ctx).
		Where("first_user = ? AND secondary_user = ?", first, secondary).
		First(&relation).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrRelationNotFound)
	}
	return &relation, nil
}

// AddFriend marks to as a friend of from. Friendship is symmetric at the
// logical level, so both directed rows are written in one transaction:
// (from,to) gains first_is_friend and (to,from) gains secondary_is_friend.
// Rows are created on demand with the remaining booleans false.
func (s *GORMStore) AddFriend(ctx context.Context, from, to string) (bool, error) {
	return s.setFriendship(ctx, from, to, true)
}

// RemoveFriend clears the two mirror friendship booleans set by AddFriend.
func (s *GORMStore) RemoveFriend(ctx context.Context, from, to string) (bool, error) {
	return s.setFriendship(ctx, from, to, false)
}

// setFriendship performs the mirror-write discipline shared by AddFriend and
// RemoveFriend. Self-relations and unknown peers report failure without
// touching the database.
func (s *GORMStore) setFriendship(ctx context.Context, from, to string, friend bool) (bool, error) {
	if from == to {
		return false, nil
	}
	exists, err := s.CheckUserExists(ctx, to)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsertRelationFlag(tx, from, to, "first_is_friend", friend); err != nil {
			return err
		}
		return upsertRelationFlag(tx, to, from, "secondary_is_friend", friend)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// upsertRelationFlag sets one boolean column on the (first, secondary) row,
// creating the row if missing. Runs inside the caller's transaction.
func upsertRelationFlag(tx *gorm.DB, first, secondary, column string, value bool) error {
	var relation models.Relation
	err := tx.Where("first_user = ? AND secondary_user = ?", first, secondary).First(&relation).Error
	switch {
	case err == nil:
		return tx.Model(&relation).Update(column, models.Flag(value)).Error

	case convertNotFoundError(err, models.ErrRelationNotFound) == models.ErrRelationNotFound:
		relation = models.Relation{
			ID:                uuid.New().String(),
			FirstUsername:     first,
			SecondaryUsername: secondary,
		}
		switch column {
		case "first_is_friend":
			relation.FirstIsFriend = models.Flag(value)
		case "secondary_is_friend":
			relation.SecondaryIsFriend = models.Flag(value)
		}
		return tx.Create(&relation).Error

	default:
		return err
	}
}
