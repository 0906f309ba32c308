package models

import (
	"fmt"
	"time"
)

// Message is one stored chat message. TimeSent is seconds since the Unix
// epoch, assigned by the store at insert time.
type Message struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	SenderUsername   string `gorm:"not null;size:255;index" json:"sender_username"`
	ReceiverUsername string `gorm:"not null;size:255;index" json:"receiver_username"`
	Content          string `gorm:"not null" json:"content"`
	TimeSent         int64  `gorm:"not null;index" json:"time_sent"`
}

// TableName returns the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// SentAt returns the send time as a time.Time.
func (m *Message) SentAt() time.Time {
	return time.Unix(m.TimeSent, 0)
}

// Validate checks structural integrity of the row. Empty content is legal;
// empty endpoints are not.
func (m *Message) Validate() error {
	if m.SenderUsername == "" || m.ReceiverUsername == "" {
		return fmt.Errorf("message: %w", ErrEmptyUsername)
	}
	return nil
}
