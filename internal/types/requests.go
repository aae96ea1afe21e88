package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalyzeRequest is the request body for the analyze and extract endpoints
type AnalyzeRequest struct {
	PDFURL string `json:"pdfUrl" binding:"required"`
}

// ErrorResponse is returned by the API when a request fails
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// ExtractResponse wraps an extraction result with the id of the recorded run
type ExtractResponse struct {
	RunID uuid.UUID `json:"runId"`
	ExtractionResult
}

// RunResponse is the API view of a recorded run
type RunResponse struct {
	ID              uuid.UUID `json:"id"`
	URL             string    `json:"url"`
	Status          string    `json:"status"`
	IsRecipe        *bool     `json:"isRecipe"`
	Reason          string    `json:"reason,omitempty"`
	RecipeName      string    `json:"recipeName,omitempty"`
	IngredientCount int       `json:"ingredientCount"`
	TotalMinutes    *float64  `json:"totalMinutes"`
	FailedStage     string    `json:"failedStage,omitempty"`
	Error           string    `json:"error,omitempty"`
	DurationMS      int64     `json:"durationMs"`
	CreatedAt       time.Time `json:"createdAt"`
}
