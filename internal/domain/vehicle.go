package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle statuses.
const (
	VehicleStatusActive      = "active"
	VehicleStatusRepair      = "repair"
	VehicleStatusUnavailable = "unavailable"
	VehicleStatusRented      = "rented"
)

// Vehicle is a fleet vehicle. License plate and VIN are unique within an
// organization. Photos live in the attachments table (owner_type "vehicle").
type Vehicle struct {
	VehicleID      uuid.UUID  `gorm:"column:vehicle_id;type:uuid;primaryKey" json:"vehicle_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:uniq_vehicles_org_plate;uniqueIndex:uniq_vehicles_org_vin" json:"organization_id"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	LicensePlate   string     `gorm:"column:license_plate;size:20;not null;uniqueIndex:uniq_vehicles_org_plate" json:"license_plate"`
	VIN            string     `gorm:"column:vin;size:17;not null;uniqueIndex:uniq_vehicles_org_vin" json:"vin"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	IsRental       bool       `gorm:"column:is_rental;not null;default:false" json:"is_rental"`
	RentalStart    *time.Time `gorm:"column:rental_start" json:"rental_start"`
	RentalEnd      *time.Time `gorm:"column:rental_end" json:"rental_end"`
	MonthlyPrice   *float64   `gorm:"column:monthly_price;type:decimal(18,2)" json:"monthly_price"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.VehicleID == uuid.Nil {
		v.VehicleID = uuid.New()
	}
	return nil
}
