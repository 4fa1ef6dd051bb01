package models

import (
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

type AttendanceRecord struct {
	Base
	StudentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"studentId"`
	Date      time.Time        `gorm:"index" json:"date"`
	Status    AttendanceStatus `gorm:"size:10;not null" json:"status"`
	Subject   *string          `gorm:"size:100" json:"subject,omitempty"`
	MarkedBy  uuid.UUID        `gorm:"type:uuid;not null;index" json:"markedBy"`
}
