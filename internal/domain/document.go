package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleDocument is a registration/insurance/inspection paper attached to a
// vehicle. Expiry status (valid/expiring/expired) is derived on read from
// date_expiry, never stored. IsActive is a soft-delete flag.
type VehicleDocument struct {
	DocumentID     uuid.UUID  `gorm:"column:document_id;type:uuid;primaryKey" json:"document_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	VehicleID      uuid.UUID  `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	DocumentType   string     `gorm:"column:document_type;size:50;not null" json:"document_type"`
	Title          string     `gorm:"column:title;not null" json:"title"`
	DateIssued     time.Time  `gorm:"column:date_issued;not null" json:"date_issued"`
	DateExpiry     *time.Time `gorm:"column:date_expiry" json:"date_expiry"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (VehicleDocument) TableName() string {
	return "vehicle_documents"
}

func (d *VehicleDocument) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == uuid.Nil {
		d.DocumentID = uuid.New()
	}
	return nil
}

// UserDocument is the per-user counterpart (licenses, certificates).
type UserDocument struct {
	DocumentID     uuid.UUID  `gorm:"column:document_id;type:uuid;primaryKey" json:"document_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	DocumentType   string     `gorm:"column:document_type;size:50;not null" json:"document_type"`
	Title          string     `gorm:"column:title;not null" json:"title"`
	DateIssued     time.Time  `gorm:"column:date_issued;not null" json:"date_issued"`
	DateExpiry     *time.Time `gorm:"column:date_expiry" json:"date_expiry"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (UserDocument) TableName() string {
	return "user_documents"
}

func (d *UserDocument) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == uuid.Nil {
		d.DocumentID = uuid.New()
	}
	return nil
}
