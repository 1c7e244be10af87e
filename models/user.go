package models

import "time"

type Role string

const (
	AdminRole Role = "ADMIN"
	UserRole  Role = "USER"
)

type User struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	Password          string    `json:"-" gorm:"not null"`
	DisplayName       string    `json:"displayName" gorm:"column:display_name"`
	AvatarURL         string    `json:"avatarUrl" gorm:"column:avatar_url"`
	Role              Role      `json:"role" gorm:"default:'USER'"`
	IsBanned          bool      `json:"isBanned" gorm:"column:is_banned;default:false"`
	Points            int       `json:"points" gorm:"default:0"`
	BadgeFirstReport  bool      `json:"badgeFirstReport" gorm:"column:badge_first_report;default:false"`
	BadgeHelper       bool      `json:"badgeHelper" gorm:"column:badge_helper;default:false"`
	BadgeResolver     bool      `json:"badgeResolver" gorm:"column:badge_resolver;default:false"`
	HelperActions     int       `json:"helperActions" gorm:"column:helper_actions;default:0"`
	ResolverConfirmed int       `json:"resolverConfirmed" gorm:"column:resolver_confirmed;default:0"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type UserCreate struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (User) TableName() string {
	return "users"
}
