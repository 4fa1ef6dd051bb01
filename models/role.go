package models

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// TargetAll is the wildcard audience for announcements.
const TargetAll = "all"

var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

type Capability int

const (
	CapManageAnnouncements Capability = iota
	CapManageEvents
	CapMarkAttendance
	CapSendNotifications
	CapViewRoster
	CapManageStudents
	CapManageTeachers
	CapManageParents
	CapManageFinance
	CapViewAdminDashboard
)

var capabilities = map[Role][]Capability{
	RoleAdmin: {
		CapManageAnnouncements, CapManageEvents, CapMarkAttendance, CapSendNotifications, CapViewRoster,
		CapManageStudents, CapManageTeachers, CapManageParents, CapManageFinance, CapViewAdminDashboard,
	},
	RoleTeacher: {
		CapManageAnnouncements, CapManageEvents, CapMarkAttendance, CapSendNotifications, CapViewRoster,
	},
}

func (r Role) Can(c Capability) bool {
	for _, granted := range capabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (i Identity) Can(c Capability) bool {
	return i.Role.Can(c)
}
