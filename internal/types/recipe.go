package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Ingredient represents a single ingredient line of an extracted recipe
type Ingredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// Validate checks that the quantity is a finite non-negative number
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("ingredient name is empty")
	}
	if math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0) {
		return fmt.Errorf("ingredient %q has a non-finite quantity", i.Name)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("ingredient %q has a negative quantity %v", i.Name, i.Quantity)
	}
	return nil
}

// Recipe represents a recipe extracted from a document
type Recipe struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Validate checks the recipe invariants and normalizes a nil ingredient list
func (r *Recipe) Validate() error {
	if r == nil {
		return errors.New("recipe is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("recipe name is empty")
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	for _, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Duration is a single cooking duration phrase found in a document, normalized to minutes
type Duration struct {
	Phrase  string  `json:"phrase"`
	Minutes float64 `json:"minutes"`
}

// CookingTime is the total cooking time and the durations it was summed from
type CookingTime struct {
	TotalMinutes float64    `json:"totalMinutes"`
	Breakdown    []Duration `json:"breakdown,omitempty"`
}

// ValidationResult is the outcome of classifying a document as a recipe or not
type ValidationResult struct {
	IsRecipe bool   `json:"isRecipe"`
	Reason   string `json:"reason"`
}

// ExtractionResult is the merged output of one extraction run. Either field may be nil.
type ExtractionResult struct {
	Recipe       *Recipe  `json:"recipe"`
	TotalMinutes *float64 `json:"totalMinutes"`
}
