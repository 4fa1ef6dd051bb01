package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// PairKey is the sorted participant ids; unique so a pair owns at most one conversation.
	PairKey string `gorm:"size:80;not null;uniqueIndex"`

	LastMessageContent    *string    `gorm:"type:text"`
	LastMessageSenderID   *uuid.UUID `gorm:"type:uuid"`
	LastMessageSenderName *string    `gorm:"size:255"`
	LastMessageAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID"`
}

type ConversationParticipant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Name           string    `gorm:"size:255;not null"`
	Role           Role      `gorm:"size:20;not null"`
	UnreadCount    int       `gorm:"not null;default:0"`
	JoinedAt       time.Time
}

type LastMessage struct {
	Content    string    `json:"content"`
	SenderID   uuid.UUID `json:"senderId"`
	SenderName string    `json:"senderName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ParticipantView struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PairKey builds the order-independent key for two participants.
func PairKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (c *Conversation) UnreadCount() map[string]int {
	counts := make(map[string]int, len(c.Participants))
	for _, p := range c.Participants {
		counts[p.UserID.String()] = p.UnreadCount
	}
	return counts
}

func (c *Conversation) LastMessage() *LastMessage {
	if c.LastMessageAt == nil || c.LastMessageSenderID == nil {
		return nil
	}
	lm := &LastMessage{SenderID: *c.LastMessageSenderID, CreatedAt: *c.LastMessageAt}
	if c.LastMessageContent != nil {
		lm.Content = *c.LastMessageContent
	}
	if c.LastMessageSenderName != nil {
		lm.SenderName = *c.LastMessageSenderName
	}
	return lm
}

func (c Conversation) MarshalJSON() ([]byte, error) {
	participants := make([]ParticipantView, 0, len(c.Participants))
	for _, p := range c.Participants {
		participants = append(participants, ParticipantView{UserID: p.UserID, Name: p.Name, Role: p.Role})
	}
	return json.Marshal(struct {
		ID           uuid.UUID         `json:"id"`
		Participants []ParticipantView `json:"participants"`
		LastMessage  *LastMessage      `json:"lastMessage,omitempty"`
		UnreadCount  map[string]int    `json:"unreadCount"`
		CreatedAt    time.Time         `json:"createdAt"`
		UpdatedAt    time.Time         `json:"updatedAt"`
	}{
		ID:           c.ID,
		Participants: participants,
		LastMessage:  c.LastMessage(),
		UnreadCount:  c.UnreadCount(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	})
}
