package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Penalty statuses and origins. Origin is an explicit column so dashboards
// can split traffic fines from damage charges without parsing descriptions.
const (
	PenaltyStatusOpen = "open"
	PenaltyStatusPaid = "paid"

	PenaltyOriginManual          = "manual"
	PenaltyOriginEquipmentDamage = "equipment_damage"
	PenaltyOriginMaterialDamage  = "material_damage"
)

// Penalty is a charge against a team, user or vehicle. Receipts live in the
// attachments table (owner_type "penalty") and are additive.
type Penalty struct {
	PenaltyID      uuid.UUID  `gorm:"column:penalty_id;type:uuid;primaryKey" json:"penalty_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	VehicleID      *uuid.UUID `gorm:"column:vehicle_id;type:uuid;index" json:"vehicle_id"`
	TeamID         *uuid.UUID `gorm:"column:team_id;type:uuid;index" json:"team_id"`
	UserID         *uuid.UUID `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	OccurredOn     time.Time  `gorm:"column:occurred_on;not null" json:"occurred_on"`
	Amount         float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Status         string     `gorm:"column:status;type:varchar(10);not null;default:'open'" json:"status"`
	Origin         string     `gorm:"column:origin;type:varchar(20);not null;default:'manual'" json:"origin"`
	Description    string     `gorm:"column:description" json:"description"`
	PaymentNotes   string     `gorm:"column:payment_notes" json:"payment_notes"`
	PaidAt         *time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Penalty) TableName() string {
	return "penalties"
}

func (p *Penalty) BeforeCreate(tx *gorm.DB) error {
	if p.PenaltyID == uuid.Nil {
		p.PenaltyID = uuid.New()
	}
	return nil
}
