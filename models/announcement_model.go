package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementSuccess AnnouncementType = "success"
	AnnouncementError   AnnouncementType = "error"
)

func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementInfo, AnnouncementWarning, AnnouncementSuccess, AnnouncementError:
		return true
	}
	return false
}

type Announcement struct {
	Base
	Title     string               `gorm:"size:255;not null"`
	Content   string               `gorm:"type:text;not null"`
	Type      AnnouncementType     `gorm:"size:20;not null;default:'info'"`
	CreatedBy uuid.UUID            `gorm:"type:uuid;not null"`
	ExpiresAt *time.Time           `gorm:"index"`
	Targets   []AnnouncementTarget `gorm:"foreignKey:AnnouncementID"`
}

// AnnouncementTarget is one audience tag: a role name or TargetAll.
type AnnouncementTarget struct {
	AnnouncementID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role           string    `gorm:"size:20;primaryKey;index"`
}

func (a *Announcement) TargetRoles() []string {
	return lo.Map(a.Targets, func(t AnnouncementTarget, _ int) string { return t.Role })
}

func (a *Announcement) SetTargetRoles(roles []string) {
	a.Targets = lo.Map(lo.Uniq(roles), func(r string, _ int) AnnouncementTarget {
		return AnnouncementTarget{AnnouncementID: a.ID, Role: r}
	})
}

// VisibleTo applies the audience and expiry rules in memory.
func (a *Announcement) VisibleTo(role Role, now time.Time) bool {
	if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
		return false
	}
	roles := a.TargetRoles()
	return lo.Contains(roles, string(role)) || lo.Contains(roles, TargetAll)
}

func (a Announcement) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          uuid.UUID        `json:"id"`
		Title       string           `json:"title"`
		Content     string           `json:"content"`
		Type        AnnouncementType `json:"type"`
		TargetRoles []string         `json:"targetRoles"`
		CreatedBy   uuid.UUID        `json:"createdBy"`
		CreatedAt   time.Time        `json:"createdAt"`
		UpdatedAt   time.Time        `json:"updatedAt"`
		ExpiresAt   *time.Time       `json:"expiresAt"`
	}{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Type:        a.Type,
		TargetRoles: a.TargetRoles(),
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		ExpiresAt:   a.ExpiresAt,
	})
}
