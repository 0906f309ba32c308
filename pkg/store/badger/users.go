package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/objectiveSquid/Chat-site/pkg/models"
	"github.com/objectiveSquid/Chat-site/pkg/store"
)

// AddUser creates an account and its token index entry in one transaction.
// Policy rejections come back through the result value, not the error.
func (s *BadgerStore) AddUser(ctx context.Context, username string) (string, models.AddUserResult, error) {
	if err := ctx.Err(); err != nil {
		return "", models.AddUserSuccess, err
	}

	if result := s.config.CheckUsername(username); result != models.AddUserSuccess {
		return "", result, nil
	}

	token, err := store.GenerateToken(s.config.TokenLength, s.config.TokenCharset)
	if err != nil {
		return "", models.AddUserSuccess, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		TokenHash: models.HashToken(token),
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyUser(username))
		if err == nil {
			return fmt.Errorf("user %q: %w", username, models.ErrDuplicateUser)
		}
		if err != badgerdb.ErrKeyNotFound {
			return fmt.Errorf("failed to check for existing user: %w", err)
		}

		encoded, err := encodeUser(user)
		if err != nil {
			return err
		}
		if err := txn.Set(keyUser(username), encoded); err != nil {
			return fmt.Errorf("failed to store user: %w", err)
		}
		if err := txn.Set(keyToken(user.TokenHash), []byte(username)); err != nil {
			return fmt.Errorf("failed to store token index: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", models.AddUserSuccess, err
	}

	return token, models.AddUserSuccess, nil
}

// GetUser returns an account by username.
func (s *BadgerStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyUser(username))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("user %q: %w", username, models.ErrUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}
		return item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts.
func (s *BadgerStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*models.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixUser)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				user, err := decodeUser(val)
				if err != nil {
					return err
				}
				users = append(users, user)
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
	return users, nil
}

// DeleteUser removes an account, its token index entry, and every relation
// row that mentions the account. Message history is kept.
func (s *BadgerStore) DeleteUser(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyUser(username))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("user %q: %w", username, models.ErrUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}

		var user *models.User
		if err := item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		}); err != nil {
			return err
		}

		if err := txn.Delete(keyUser(username)); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if err := txn.Delete(keyToken(user.TokenHash)); err != nil {
			return fmt.Errorf("failed to delete token index: %w", err)
		}

		// Relation rows in either direction. Owned rows share a prefix;
		// reverse rows require scanning the whole namespace.
		var stale [][]byte
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixRelation)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				relation, err := decodeRelation(val)
				if err != nil {
					return err
				}
				if relation.FirstUsername == username || relation.SecondaryUsername == username {
					stale = append(stale, item.KeyCopy(nil))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete relation: %w", err)
			}
		}
		return nil
	})
}

// CheckToken resolves a plaintext token to its owner through the token
// index. A miss is reported through ok, not the error.
func (s *BadgerStore) CheckToken(ctx context.Context, token string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var username string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyToken(models.HashToken(token)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			username = string(val)
			return nil
		})
	})
	if err == badgerdb.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up token: %w", err)
	}
	return username, true, nil
}

// CheckUserExists reports whether an account exists.
func (s *BadgerStore) CheckUserExists(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(keyUser(username))
		return err
	})
	if err == badgerdb.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return true, nil
}
