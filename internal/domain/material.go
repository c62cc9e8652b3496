package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material types.
const (
	MaterialTypeConsumable = "consumable"
	MaterialTypeEquipment  = "equipment"
)

// Material is stock that can be issued to teams.
//
// Consumables: total_quantity is decremented permanently on issue
// (available = total_quantity). Equipment: assigned_quantity counts units
// currently checked out (available = total_quantity - assigned_quantity,
// never negative). Both counters are only mutated through conditional
// updates in the materials service.
type Material struct {
	MaterialID       uuid.UUID `gorm:"column:material_id;type:uuid;primaryKey" json:"material_id"`
	OrganizationID   uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	MaterialType     string    `gorm:"column:material_type;type:varchar(20);not null" json:"material_type"`
	Unit             string    `gorm:"column:unit;size:20;not null" json:"unit"`
	UnitPrice        *float64  `gorm:"column:unit_price;type:decimal(18,2)" json:"unit_price"`
	TotalQuantity    int       `gorm:"column:total_quantity;not null;default:0" json:"total_quantity"`
	AssignedQuantity int       `gorm:"column:assigned_quantity;not null;default:0" json:"assigned_quantity"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Material) TableName() string {
	return "materials"
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.MaterialID == uuid.Nil {
		m.MaterialID = uuid.New()
	}
	return nil
}

// Available returns the quantity that can still be issued.
func (m *Material) Available() int {
	if m.MaterialType == MaterialTypeEquipment {
		return m.TotalQuantity - m.AssignedQuantity
	}
	return m.TotalQuantity
}
