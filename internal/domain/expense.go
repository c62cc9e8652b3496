package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is a cost row against a vehicle or a team. When MaintenanceID is
// set the row was created by a maintenance record and is immutable through
// the expense endpoints.
type Expense struct {
	ExpenseID      uuid.UUID  `gorm:"column:expense_id;type:uuid;primaryKey" json:"expense_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	VehicleID      *uuid.UUID `gorm:"column:vehicle_id;type:uuid;index" json:"vehicle_id"`
	TeamID         *uuid.UUID `gorm:"column:team_id;type:uuid;index" json:"team_id"`
	Category       string     `gorm:"column:category;size:30;not null" json:"category"`
	SpentOn        time.Time  `gorm:"column:spent_on;not null" json:"spent_on"`
	Amount         float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Description    string     `gorm:"column:description" json:"description"`
	MaintenanceID  *uuid.UUID `gorm:"column:maintenance_id;type:uuid;index" json:"maintenance_id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ExpenseID == uuid.Nil {
		e.ExpenseID = uuid.New()
	}
	return nil
}
