package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAcademic EventType = "academic"
	EventCultural EventType = "cultural"
	EventSports   EventType = "sports"
	EventOther    EventType = "other"
)

type Event struct {
	Base
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	StartDate      time.Time  `gorm:"index" json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	Location       *string    `gorm:"size:255" json:"location,omitempty"`
	Type           EventType  `gorm:"size:20;not null;default:'other'" json:"type"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null" json:"createdBy"`
	ReminderSentAt *time.Time `json:"-"`
}
