package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Maintenance types.
const (
	MaintenanceTypeInspection = "inspection"
	MaintenanceTypeRepair     = "repair"
)

// Maintenance is an inspection or repair event on a vehicle. Creating one
// also creates a linked Expense row in the same transaction.
type Maintenance struct {
	MaintenanceID   uuid.UUID `gorm:"column:maintenance_id;type:uuid;primaryKey" json:"maintenance_id"`
	OrganizationID  uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	VehicleID       uuid.UUID `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	PerformedOn     time.Time `gorm:"column:performed_on;not null" json:"performed_on"`
	MaintenanceType string    `gorm:"column:maintenance_type;type:varchar(20);not null" json:"maintenance_type"`
	Description     string    `gorm:"column:description" json:"description"`
	Cost            float64   `gorm:"column:cost;type:decimal(18,2);not null;default:0" json:"cost"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Maintenance) TableName() string {
	return "maintenances"
}

func (m *Maintenance) BeforeCreate(tx *gorm.DB) error {
	if m.MaintenanceID == uuid.Nil {
		m.MaintenanceID = uuid.New()
	}
	return nil
}
