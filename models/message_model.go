package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message keeps the sender's name and role as they were at send time; later
// profile edits do not rewrite history.
type Message struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID                   `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1" json:"conversationId"`
	SenderID       uuid.UUID                   `gorm:"type:uuid;not null" json:"senderId"`
	SenderName     string                      `gorm:"size:255;not null" json:"senderName"`
	SenderRole     Role                        `gorm:"size:20;not null" json:"senderRole"`
	Content        string                      `gorm:"type:text;not null" json:"content"`
	Attachments    datatypes.JSONSlice[string] `json:"attachments"`
	ReadBy         []uuid.UUID                 `gorm:"-" json:"readBy"`
	CreatedAt      time.Time                   `gorm:"index:idx_messages_conversation_created,priority:2" json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

// MessageRead is one member of a message's read-by set.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Message) IsReadBy(userID uuid.UUID) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
