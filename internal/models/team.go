package models

import (
	"time"

	"gorm.io/datatypes"
)

// Team is a registered hackathon team in the roster.
type Team struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"size:255;not null" json:"name"`
	Members      datatypes.JSONSlice[string] `gorm:"type:json" json:"members"`
	ProjectTitle string                      `gorm:"size:255" json:"project_title"`
	Category     string                      `gorm:"size:128" json:"category"`
	IsActive     bool                        `gorm:"not null" json:"is_active"`
	Version      int                         `gorm:"not null" json:"version"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
