package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile holds the free-form sections of a user's profile page.
type Profile struct {
	Base
	UserID           uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	PersonalInfo     datatypes.JSONMap `json:"personalInfo"`
	ContactInfo      datatypes.JSONMap `json:"contactInfo"`
	EmergencyContact datatypes.JSONMap `json:"emergencyContact"`
	Preferences      datatypes.JSONMap `json:"preferences"`
	Avatar           *string           `gorm:"size:512" json:"avatar,omitempty"`
}
