package badger

import (
	"context"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// AddMessage appends a message stamped with the current time.
func (s *BadgerStore) AddMessage(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:               uuid.New().String(),
		SenderUsername:   sender,
		ReceiverUsername: receiver,
		Content:          content,
		TimeSent:         time.Now().Unix(),
	}

	encoded, err := encodeMessage(message)
	if err != nil {
		return nil, err
	}

	key := keyMessage(sender, receiver, message.TimeSent, message.ID)
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set(key, encoded); err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// MessagesBetween returns the conversation between the unordered pair {a, b}
// with time_sent at or after since. Keys embed the send time big-endian, so
// the iteration order is already chronological.
func (s *BadgerStore) MessagesBetween(ctx context.Context, a, b string, since time.Time) ([]*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cutoff := since.Unix()

	var messages []*models.Message
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = conversationPrefix(a, b)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				message, err := decodeMessage(val)
				if err != nil {
					return err
				}
				if message.TimeSent >= cutoff {
					messages = append(messages, message)
				}
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
	return messages, nil
}
