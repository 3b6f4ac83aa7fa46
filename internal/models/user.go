package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleCorporate Role = "CORPORATE"
	RoleInnovator Role = "INNOVATOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCorporate, RoleInnovator:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Email    string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
	Role     Role      `gorm:"type:varchar(20);not null;index" json:"role"`

	CompanyName       string `gorm:"type:varchar(191)" json:"company_name"`
	ContactInfo       string `gorm:"type:text" json:"contact_info"`
	ProfilePictureURL string `gorm:"type:varchar(512)" json:"profile_picture_url"`
	CompanyLogoURL    string `gorm:"type:varchar(512)" json:"company_logo_url"`

	// nil until the user first marks the feed as seen
	LastViewedActivitiesAt *time.Time `json:"last_viewed_activities_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
