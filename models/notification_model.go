package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationInfo       NotificationType = "info"
	NotificationWarning    NotificationType = "warning"
	NotificationSuccess    NotificationType = "success"
	NotificationError      NotificationType = "error"
	NotificationMessage    NotificationType = "message"
	NotificationAssignment NotificationType = "assignment"
	NotificationGrade      NotificationType = "grade"
	NotificationAttendance NotificationType = "attendance"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationWarning, NotificationSuccess, NotificationError,
		NotificationMessage, NotificationAssignment, NotificationGrade, NotificationAttendance:
		return true
	}
	return false
}

type Notification struct {
	Base
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"userId"`
	Type      NotificationType  `gorm:"size:20;not null" json:"type"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Read      bool              `gorm:"not null;default:false;index" json:"read"`
	ActionURL *string           `gorm:"size:512" json:"actionUrl,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	ExpiresAt *time.Time        `json:"expiresAt"`
}
