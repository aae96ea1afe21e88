// Package history records a summary row for every pipeline request.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/recipepdf/internal/models"
	"github.com/pageza/recipepdf/internal/types"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no run has the requested id
var ErrNotFound = errors.New("run not found")

// DefaultListLimit bounds List when no limit is given
const DefaultListLimit = 20

// MaxListLimit is the largest page List returns
const MaxListLimit = 100

// Store persists run summaries
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record saves run
func (s *Store) Record(ctx context.Context, run *models.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Get returns the run with id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	var run models.Run
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// List returns the most recent runs, newest first
func (s *Store) List(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var runs []*models.Run
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// FromResult builds the summary of a finished or failed run. validation is
// nil when the run failed before the document was classified.
func FromResult(id uuid.UUID, url string, validation *types.ValidationResult, result *types.ExtractionResult, runErr error, elapsed time.Duration) *models.Run {
	run := &models.Run{
		ID:         id,
		URL:        url,
		DurationMS: elapsed.Milliseconds(),
	}
	if validation != nil {
		isRecipe := validation.IsRecipe
		run.IsRecipe = &isRecipe
		run.Reason = validation.Reason
	}

	switch {
	case runErr != nil:
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
		if stage, ok := types.StageOf(runErr); ok {
			run.FailedStage = string(stage)
		}
	case validation != nil && !validation.IsRecipe:
		run.Status = models.RunStatusNotRecipe
	default:
		run.Status = models.RunStatusCompleted
	}

	if result != nil {
		if result.Recipe != nil {
			run.RecipeName = result.Recipe.Name
			run.IngredientCount = len(result.Recipe.Ingredients)
		}
		run.TotalMinutes = result.TotalMinutes
	}
	return run
}

// ToResponse converts a run to its API representation
func ToResponse(run *models.Run) types.RunResponse {
	return types.RunResponse{
		ID:              run.ID,
		URL:             run.URL,
		Status:          run.Status,
		IsRecipe:        run.IsRecipe,
		Reason:          run.Reason,
		RecipeName:      run.RecipeName,
		IngredientCount: run.IngredientCount,
		TotalMinutes:    run.TotalMinutes,
		FailedStage:     run.FailedStage,
		Error:           run.Error,
		DurationMS:      run.DurationMS,
		CreatedAt:       run.CreatedAt,
	}
}
