package models

import "time"

// CriterionID is the stable lookup key for an evaluation criterion. Display
// names live on Criterion.Name and may change without touching stored scores.
type CriterionID string

// Criterion describes a scoring dimension and its mark cap.
type Criterion struct {
	ID          CriterionID `gorm:"primaryKey;size:64" json:"id"`
	Name        string      `gorm:"size:128;not null;uniqueIndex" json:"name"`
	MaxMarks    int         `gorm:"not null" json:"max_marks"`
	Description string      `gorm:"type:text" json:"description"`
	Weight      int         `json:"weight"`
	Position    int         `gorm:"not null" json:"position"`
	IsActive    bool        `gorm:"not null" json:"is_active"`
	Version     int         `gorm:"not null" json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DefaultCriteria returns the standard hackathon rubric totalling 100 marks.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{ID: "innovation", Name: "Innovation", MaxMarks: 25, Weight: 25, Position: 1, IsActive: true, Version: 1,
			Description: "Originality and creativity of the solution"},
		{ID: "feasibility", Name: "Feasibility", MaxMarks: 20, Weight: 20, Position: 2, IsActive: true, Version: 1,
			Description: "Practicality and implementability of the solution"},
		{ID: "presentation", Name: "Presentation", MaxMarks: 15, Weight: 15, Position: 3, IsActive: true, Version: 1,
			Description: "Quality of presentation and communication"},
		{ID: "impact", Name: "Impact", MaxMarks: 20, Weight: 20, Position: 4, IsActive: true, Version: 1,
			Description: "Potential social and economic impact"},
		{ID: "technical_quality", Name: "Technical Quality", MaxMarks: 20, Weight: 20, Position: 5, IsActive: true, Version: 1,
			Description: "Technical soundness and implementation quality"},
	}
}

// TotalMaxMarks sums the caps of the supplied criteria.
func TotalMaxMarks(criteria []Criterion) int {
	total := 0
	for _, criterion := range criteria {
		total += criterion.MaxMarks
	}
	return total
}
