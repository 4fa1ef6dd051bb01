package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Teacher struct {
	Base
	UserID        *uuid.UUID                  `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	EmployeeID    string                      `gorm:"size:50;not null;uniqueIndex" json:"employeeId"`
	Subjects      datatypes.JSONSlice[string] `json:"subjects"`
	Classes       datatypes.JSONSlice[string] `json:"classes"`
	Department    string                      `gorm:"size:100" json:"department"`
	Qualification string                      `gorm:"size:255" json:"qualification"`
	Experience    int                         `json:"experience"`
	Phone         string                      `gorm:"size:30" json:"phone"`
	Address       string                      `gorm:"size:512" json:"address"`
}

type Parent struct {
	Base
	UserID     *uuid.UUID                  `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name       string                      `gorm:"size:255;not null" json:"name"`
	Children   datatypes.JSONSlice[string] `json:"children"`
	Occupation string                      `gorm:"size:255" json:"occupation"`
	Phone      string                      `gorm:"size:30" json:"phone"`
	Address    string                      `gorm:"size:512" json:"address"`
}
