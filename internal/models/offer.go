package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer is a marketplace listing published by an innovator.
type Offer struct {
	ID           uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	Title        string      `gorm:"not null" json:"title"`
	Description  string      `gorm:"type:text;not null" json:"description"`
	CategoryID   *uuid.UUID  `gorm:"type:char(36);index" json:"category_id"`
	Price        float64     `gorm:"not null" json:"price"`
	Duration     string      `gorm:"not null" json:"duration"`
	Deliverables string      `gorm:"type:text;not null" json:"deliverables"`
	ContactEmail string      `gorm:"not null" json:"contact_email"`
	Status       OfferStatus `gorm:"type:varchar(20);not null;default:AVAILABLE;index" json:"status"`
	OwnerID      uuid.UUID   `gorm:"type:char(36);not null;index" json:"owner_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Owner    *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OfferAvailable
	}
	return
}
