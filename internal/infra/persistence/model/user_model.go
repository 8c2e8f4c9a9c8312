// Package model contains the GORM persistence models. They are mapped to and
// from pure domain entities at the repository boundary.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the GORM model backing the users table. Username and email
// each carry a unique index; conflict detection on insert relies on those
// constraints rather than any pre-existence check.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:text;primaryKey"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"`
	Email        string    `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:100;not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns a fresh UUID when the caller did not provide one.
func (m *UserModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}
