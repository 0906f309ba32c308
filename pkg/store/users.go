package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// AddUser creates an account and hands back the plaintext token. The token
// is generated from the configured charset and immediately reduced to its
// SHA-512 for storage; there is no way to read it again later.
func (s *GORMStore) AddUser(ctx context.Context, username string) (string, models.AddUserResult, error) {
	if result := s.config.CheckUsername(username); result != models.AddUserSuccess {
		return "", result, nil
	}

	token, err := GenerateToken(s.config.TokenLength, s.config.TokenCharset)
	if err != nil {
		return "", models.AddUserSuccess, fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		TokenHash: models.HashToken(token),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", models.AddUserSuccess, models.ErrDuplicateUser
		}
		return "", models.AddUserSuccess, err
	}

	return token, models.AddUserSuccess, nil
}

// GetUser returns an account by username.
func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// ListUsers returns every account.
func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account together with its relation rows, in both
// directions. Message history is kept.
func (s *GORMStore) DeleteUser(ctx context.Context, username string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return convertNotFoundError(err, models.ErrUserNotFound)
		}

		if err := tx.Where("first_user = ? OR secondary_user = ?", username, username).
			Delete(&models.Relation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// CheckToken resolves a plaintext token to its owner by hash lookup. A miss
// is reported through the bool, not the error.
func (s *GORMStore) CheckToken(ctx context.Context, token string) (string, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("token_hash = ?", models.HashToken(token)).First(&user).Error
	switch {
	case err == nil:
		return user.Username, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", false, nil
	default:
		return "", false, err
	}
}

// CheckUserExists reports whether an account exists.
func (s *GORMStore) CheckUserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
