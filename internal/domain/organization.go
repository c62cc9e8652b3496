package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every other table carries
// organization_id and every query must be scoped by it (see internal/tenant).
type Organization struct {
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;primaryKey" json:"org_id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Organization) TableName() string {
	return "organizations"
}

// BeforeCreate ensures org_id is set for DBs without default uuid.
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.OrgID == uuid.Nil {
		o.OrgID = uuid.New()
	}
	return nil
}
