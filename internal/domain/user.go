package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a back-office account. Role values live in internal/constants.
type User struct {
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	FirstName      string     `gorm:"column:first_name;not null" json:"first_name"`
	LastName       string     `gorm:"column:last_name;not null" json:"last_name"`
	Email          string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash   string     `gorm:"column:password_hash;not null" json:"-"`
	Role           string     `gorm:"column:role;type:varchar(20);not null" json:"role"`
	TeamID         *uuid.UUID `gorm:"column:team_id;type:uuid;index" json:"team_id"`
	Phone          *string    `gorm:"column:phone" json:"phone"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
