package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssignmentEvent types.
const (
	EventIssued          = "ISSUED"
	EventConsumed        = "CONSUMED"
	EventMarkedForReturn = "MARKED_FOR_RETURN"
	EventReturned        = "RETURNED"
	EventBroken          = "BROKEN"
)

// AssignmentEvent is an append-only audit row for material assignment
// lifecycle transitions. EventData holds transition-specific fields
// (quantity, fault, penalty_id).
type AssignmentEvent struct {
	EventID        uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	OrganizationID uuid.UUID      `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	AssignmentID   uuid.UUID      `gorm:"column:assignment_id;type:uuid;not null;index" json:"assignment_id"`
	EventType      string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData      datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	ActorUserID    *uuid.UUID     `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (AssignmentEvent) TableName() string {
	return "assignment_events"
}

func (e *AssignmentEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
