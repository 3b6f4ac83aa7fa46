package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PilotProject pairs exactly one corporate with one innovator.
type PilotProject struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:Pending;index" json:"status"`
	CorporateID uuid.UUID     `gorm:"type:char(36);not null;index" json:"corporate_id"`
	InnovatorID uuid.UUID     `gorm:"type:char(36);not null;index" json:"innovator_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Corporate *User `gorm:"foreignKey:CorporateID;constraint:OnDelete:CASCADE" json:"corporate,omitempty"`
	Innovator *User `gorm:"foreignKey:InnovatorID;constraint:OnDelete:CASCADE" json:"innovator,omitempty"`
}

func (p *PilotProject) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProjectPending
	}
	return
}

func (p *PilotProject) Participants() []uuid.UUID {
	return []uuid.UUID{p.CorporateID, p.InnovatorID}
}

func (p *PilotProject) IsParticipant(userID uuid.UUID) bool {
	return p.CorporateID == userID || p.InnovatorID == userID
}
