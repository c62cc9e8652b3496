package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleAssignment links a vehicle to a team (and optionally a driver) for a
// time span. end_date == nil means the assignment is active. Invariant: at
// most one open assignment per vehicle; enforced by the vehicles service
// (close-old-then-open-new in one transaction), not by a DB constraint.
type VehicleAssignment struct {
	AssignmentID   uuid.UUID  `gorm:"column:assignment_id;type:uuid;primaryKey" json:"assignment_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	VehicleID      uuid.UUID  `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	TeamID         uuid.UUID  `gorm:"column:team_id;type:uuid;not null;index" json:"team_id"`
	DriverUserID   *uuid.UUID `gorm:"column:driver_user_id;type:uuid" json:"driver_user_id"`
	StartDate      time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate        *time.Time `gorm:"column:end_date;index" json:"end_date"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (VehicleAssignment) TableName() string {
	return "vehicle_assignments"
}

func (a *VehicleAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.AssignmentID == uuid.Nil {
		a.AssignmentID = uuid.New()
	}
	return nil
}
