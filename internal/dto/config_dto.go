package dto

import (
	"time"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// CriterionCreateRequest registers a new scoring criterion.
type CriterionCreateRequest struct {
	ID          string `json:"id" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,min=2,max=128"`
	MaxMarks    int    `json:"max_marks" validate:"required,min=1,max=1000"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Weight      int    `json:"weight" validate:"omitempty,min=0,max=1000"`
	Position    int    `json:"position" validate:"omitempty,min=0"`
	IsActive    *bool  `json:"is_active"`
}

// CriterionUpdateRequest applies a partial change to a criterion.
type CriterionUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=128"`
	MaxMarks    *int    `json:"max_marks" validate:"omitempty,min=1,max=1000"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Weight      *int    `json:"weight" validate:"omitempty,min=0,max=1000"`
	Position    *int    `json:"position" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

// TeamCreateRequest registers a new team.
type TeamCreateRequest struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Members      []string `json:"members" validate:"omitempty,max=12,dive,required,max=128"`
	ProjectTitle string   `json:"project_title" validate:"omitempty,max=255"`
	Category     string   `json:"category" validate:"omitempty,max=128"`
	IsActive     *bool    `json:"is_active"`
}

// TeamUpdateRequest applies a partial change to a team.
type TeamUpdateRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Members      []string `json:"members" validate:"omitempty,max=12,dive,required,max=128"`
	ProjectTitle *string  `json:"project_title" validate:"omitempty,max=255"`
	Category     *string  `json:"category" validate:"omitempty,max=128"`
	IsActive     *bool    `json:"is_active"`
}

// JuryCreateRequest registers a new jury.
type JuryCreateRequest struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Designation string   `json:"designation" validate:"required,max=255"`
	Department  string   `json:"department" validate:"required,max=255"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone" validate:"omitempty,max=64"`
	Expertise   []string `json:"expertise" validate:"omitempty,dive,required,max=128"`
	IsActive    *bool    `json:"is_active"`
}

// JuryUpdateRequest applies a partial change to a jury.
type JuryUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Designation *string  `json:"designation" validate:"omitempty,max=255"`
	Department  *string  `json:"department" validate:"omitempty,max=255"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone" validate:"omitempty,max=64"`
	Expertise   []string `json:"expertise" validate:"omitempty,dive,required,max=128"`
	IsActive    *bool    `json:"is_active"`
}

// RosterDocument is the export/import format of the configuration store.
type RosterDocument struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Criteria   []models.Criterion `json:"criteria"`
	Teams      []models.Team      `json:"teams"`
	Juries     []models.Jury      `json:"juries"`
}

// ImportRosterResponse summarises an import.
type ImportRosterResponse struct {
	Criteria int `json:"criteria"`
	Teams    int `json:"teams"`
	Juries   int `json:"juries"`
}
