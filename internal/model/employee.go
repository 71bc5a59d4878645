package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee roles. The canonical store keeps exactly one per record.
const (
	RoleDefault   = "default"
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

// Roles returns the closed set of roles in display order.
func Roles() []string {
	return []string{RoleDefault, RoleAdmin, RoleDeveloper}
}

// Employee is the plain employee value handed out by repositories. Store
// specific identifier types are converted to ID before leaving a store.
type Employee struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	AuthID    string    `json:"auth_id" gorm:"column:auth_id;uniqueIndex;size:191;not null"`
	Name      string    `json:"name" gorm:"size:255"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	Role      string    `json:"role" gorm:"size:50;not null"`
	Onboarded bool      `json:"onboarded" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets a UUID before creating the record.
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
