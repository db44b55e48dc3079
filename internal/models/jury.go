package models

import (
	"time"

	"gorm.io/datatypes"
)

// Jury is an evaluator registered in the roster.
type Jury struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Designation string                      `gorm:"size:255;not null" json:"designation"`
	Department  string                      `gorm:"size:255;not null" json:"department"`
	Email       string                      `gorm:"size:255" json:"email"`
	Phone       string                      `gorm:"size:64" json:"phone"`
	Expertise   datatypes.JSONSlice[string] `gorm:"type:json" json:"expertise"`
	IsActive    bool                        `gorm:"not null" json:"is_active"`
	Version     int                         `gorm:"not null" json:"version"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
