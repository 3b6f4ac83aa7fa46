package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark points at exactly one of Offer or PilotProject.
type Bookmark struct {
	ID             uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:char(36);not null;index" json:"user_id"`
	OfferID        *uuid.UUID `gorm:"type:char(36);index" json:"offer_id"`
	PilotProjectID *uuid.UUID `gorm:"type:char(36);index" json:"pilot_project_id"`

	CreatedAt time.Time `json:"created_at"`

	User         *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Offer        *Offer        `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"offer,omitempty"`
	PilotProject *PilotProject `gorm:"foreignKey:PilotProjectID;constraint:OnDelete:CASCADE" json:"pilot_project,omitempty"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
