package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team groups workers; vehicles and materials are issued to teams.
// A team cannot be deleted while it has members or an active vehicle assignment.
type Team struct {
	TeamID         uuid.UUID  `gorm:"column:team_id;type:uuid;primaryKey" json:"team_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	LeadUserID     *uuid.UUID `gorm:"column:lead_user_id;type:uuid" json:"lead_user_id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Team) TableName() string {
	return "teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.TeamID == uuid.Nil {
		t.TeamID = uuid.New()
	}
	return nil
}
