package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	PilotProjectID uuid.UUID `gorm:"type:char(36);not null;index" json:"pilot_project_id"`
	UserID         uuid.UUID `gorm:"type:char(36);not null;index" json:"user_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PilotProject *PilotProject `gorm:"foreignKey:PilotProjectID;constraint:OnDelete:CASCADE" json:"pilot_project,omitempty"`
	User         *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Reactions    []Reaction    `gorm:"foreignKey:CommentID" json:"reactions,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type Reaction struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_reaction_comment_user_type" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_reaction_comment_user_type" json:"user_id"`
	Type      string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_reaction_comment_user_type" json:"type"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Comment *Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"comment,omitempty"`
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
