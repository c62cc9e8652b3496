package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialAssignment statuses. Equipment follows
// active -> pending_return -> {returned | broken}; consumables are written
// straight to consumed on issue. Terminal states are final.
const (
	AssignmentStatusActive        = "active"
	AssignmentStatusConsumed      = "consumed"
	AssignmentStatusPendingReturn = "pending_return"
	AssignmentStatusReturned      = "returned"
	AssignmentStatusBroken        = "broken"
)

// MaterialAssignment records a quantity of a material issued to a team.
type MaterialAssignment struct {
	AssignmentID   uuid.UUID `gorm:"column:assignment_id;type:uuid;primaryKey" json:"assignment_id"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	MaterialID     uuid.UUID `gorm:"column:material_id;type:uuid;not null;index" json:"material_id"`
	TeamID         uuid.UUID `gorm:"column:team_id;type:uuid;not null;index" json:"team_id"`
	Quantity       int       `gorm:"column:quantity;not null" json:"quantity"`
	IssuedOn       time.Time `gorm:"column:issued_on;not null" json:"issued_on"`
	Status         string    `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	Notes          string    `gorm:"column:notes" json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (MaterialAssignment) TableName() string {
	return "material_assignments"
}

func (a *MaterialAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.AssignmentID == uuid.Nil {
		a.AssignmentID = uuid.New()
	}
	return nil
}
