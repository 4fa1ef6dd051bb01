package models

type User struct {
	Base
	Name     string  `gorm:"size:255;not null" json:"name"`
	Email    string  `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string  `gorm:"not null" json:"-"`
	Role     Role    `gorm:"size:20;not null;default:'student';index" json:"role"`
	Avatar   *string `gorm:"size:512" json:"avatar,omitempty"`
}

// UserSummary is the public projection returned by search.
type UserSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Avatar *string `json:"avatar,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}
