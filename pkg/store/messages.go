package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// AddMessage appends a message stamped with the current time.
func (s *GORMStore) AddMessage(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	message := &models.Message{
		ID:               uuid.New().String(),
		SenderUsername:   sender,
		ReceiverUsername: receiver,
		Content:          content,
		TimeSent:         time.Now().Unix(),
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// MessagesBetween returns the conversation between the unordered pair {a, b}
// sent at or after since, oldest first.
func (s *GORMStore) MessagesBetween(ctx context.Context, a, b string, since time.Time) ([]*models.Message, error) {
	var messages []*models.Message
	err := s.db.WithContext(ctx).
		Where("sender_username IN (?, ?) AND receiver_username IN (?, ?) AND time_sent >= ?",
			a, b, a, b, since.Unix()).
		Order("time_sent ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
