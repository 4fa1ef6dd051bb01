package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Student struct {
	Base
	UserID        *uuid.UUID                  `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	RollNumber    string                      `gorm:"size:50;not null;uniqueIndex" json:"rollNumber"`
	Class         string                      `gorm:"column:class_name;size:50;index" json:"class"`
	Section       string                      `gorm:"size:20" json:"section"`
	AdmissionDate time.Time                   `json:"admissionDate"`
	ParentIDs     datatypes.JSONSlice[string] `json:"parentIds"`
	Subjects      datatypes.JSONSlice[string] `json:"subjects"`
	DateOfBirth   time.Time                   `json:"dateOfBirth"`
	Address       string                      `gorm:"size:512" json:"address"`
	Phone         string                      `gorm:"size:30" json:"phone"`
	Gender        Gender                      `gorm:"size:10;index" json:"gender"`
}
