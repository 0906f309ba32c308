package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// AllRelations returns every relation row owned by username.
func (s *BadgerStore) AllRelations(ctx context.Context, username string) ([]*models.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var relations []*models.Relation
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = keyRelationPrefix(username)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				relation, err := decodeRelation(val)
				if err != nil {
					return err
				}
				relations = append(relations, relation)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return relations, nil
}

// GetRelation returns the directed (first, secondary) row.
func (s *BadgerStore) GetRelation(ctx context.Context, first, secondary string) (*models.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var relation *models.Relation
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyRelation(first, secondary))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("relation %s/%s: %w", first, secondary, models.ErrRelationNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read relation: %w", err)
		}
		return item.Value(func(val []byte) error {
			relation, err = decodeRelation(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return relation, nil
}

// AddFriend marks to as a friend of from, mirroring the flag onto both
// directed rows in one transaction.
func (s *BadgerStore) AddFriend(ctx context.Context, from, to string) (bool, error) {
	return s.setFriendship(ctx, from, to, true)
}

// RemoveFriend clears the friendship flags set by AddFriend.
func (s *BadgerStore) RemoveFriend(ctx context.Context, from, to string) (bool, error) {
	return s.setFriendship(ctx, from, to, false)
}

func (s *BadgerStore) setFriendship(ctx context.Context, from, to string, friend bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

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

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		err := upsertRelationTx(txn, from, to, func(r *models.Relation) {
			r.FirstIsFriend = models.Flag(friend)
		})
		if err != nil {
			return err
		}
		return upsertRelationTx(txn, to, from, func(r *models.Relation) {
			r.SecondaryIsFriend = models.Flag(friend)
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// upsertRelationTx loads the (first, secondary) row, creating a zero-flag
// row when absent, applies mutate, and writes it back.
func upsertRelationTx(txn *badgerdb.Txn, first, secondary string, mutate func(*models.Relation)) error {
	key := keyRelation(first, secondary)

	relation := &models.Relation{
		ID:                uuid.New().String(),
		FirstUsername:     first,
		SecondaryUsername: secondary,
	}

	item, err := txn.Get(key)
	switch {
	case err == badgerdb.ErrKeyNotFound:
		// fresh row, all flags false
	case err != nil:
		return fmt.Errorf("failed to read relation %s/%s: %w", first, secondary, err)
	default:
		if err := item.Value(func(val []byte) error {
			relation, err = decodeRelation(val)
			return err
		}); err != nil {
			return err
		}
	}

	mutate(relation)

	encoded, err := encodeRelation(relation)
	if err != nil {
		return err
	}
	if err := txn.Set(key, encoded); err != nil {
		return fmt.Errorf("failed to store relation %s/%s: %w", first, secondary, err)
	}
	return nil
}
