package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID             uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	PilotProjectID uuid.UUID    `gorm:"type:char(36);not null;index" json:"pilot_project_id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null;default:OPEN" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null;default:MEDIUM" json:"priority"`
	DueDate        *time.Time   `json:"due_date"`
	AssignedToID   *uuid.UUID   `gorm:"type:char(36);index" json:"assigned_to_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PilotProject *PilotProject `gorm:"foreignKey:PilotProjectID;constraint:OnDelete:CASCADE" json:"pilot_project,omitempty"`
	AssignedTo   *User         `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskOpen
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return
}
