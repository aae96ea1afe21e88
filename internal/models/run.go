package models

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusCompleted = "completed"
	RunStatusNotRecipe = "not_recipe"
	RunStatusFailed    = "failed"
)

// Run is the summary of one extraction or analysis request
type Run struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	URL             string    `gorm:"type:text;not null" json:"url"`
	Status          string    `gorm:"size:32;not null;index" json:"status"`
	// IsRecipe is nil when the run failed before classification
	IsRecipe        *bool     `json:"is_recipe"`
	Reason          string    `gorm:"type:text;not null" json:"reason"`
	RecipeName      string    `gorm:"type:text;not null" json:"recipe_name"`
	IngredientCount int       `gorm:"not null" json:"ingredient_count"`
	TotalMinutes    *float64  `json:"total_minutes"`
	FailedStage     string    `gorm:"size:32;not null" json:"failed_stage"`
	Error           string    `gorm:"type:text;not null" json:"error"`
	DurationMS      int64     `gorm:"not null" json:"duration_ms"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the table name for the Run model
func (Run) TableName() string {
	return "extraction_runs"
}
