package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment owner types.
const (
	AttachmentOwnerVehicle         = "vehicle"
	AttachmentOwnerPenalty         = "penalty"
	AttachmentOwnerVehicleDocument = "vehicle_document"
	AttachmentOwnerUserDocument    = "user_document"
	AttachmentOwnerExpense         = "expense"
	AttachmentOwnerMaintenance     = "maintenance"
)

// Attachment is an ordered blob reference owned by a parent entity
// (owner_type + owner_id). Path is the blob store path returned by
// internal/blob. Position preserves upload order.
type Attachment struct {
	AttachmentID   uuid.UUID `gorm:"column:attachment_id;type:uuid;primaryKey" json:"attachment_id"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	OwnerType      string    `gorm:"column:owner_type;size:30;not null;index:idx_attachments_owner" json:"owner_type"`
	OwnerID        uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:idx_attachments_owner" json:"owner_id"`
	Position       int       `gorm:"column:position;not null;default:0" json:"position"`
	Path           string    `gorm:"column:path;not null" json:"path"`
	Category       string    `gorm:"column:category;size:30;not null" json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Attachment) TableName() string {
	return "attachments"
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.AttachmentID == uuid.Nil {
		a.AttachmentID = uuid.New()
	}
	return nil
}
