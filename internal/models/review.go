package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review is written by a participant once the project is Completed.
// The composite unique index keeps it to one review per (project, reviewer).
type Review struct {
	ID                 uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	PilotProjectID     uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_review_project_reviewer" json:"pilot_project_id"`
	ReviewerID         uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_review_project_reviewer" json:"reviewer_id"`
	Rating             int            `gorm:"not null" json:"rating"` // 1-5
	Comment            string         `gorm:"type:text" json:"comment"`
	EvaluationCriteria datatypes.JSON `json:"evaluation_criteria,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PilotProject *PilotProject `gorm:"foreignKey:PilotProjectID;constraint:OnDelete:CASCADE" json:"pilot_project,omitempty"`
	Reviewer     *User         `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"reviewer,omitempty"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
