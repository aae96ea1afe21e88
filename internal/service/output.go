package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipepdf/internal/types"
)

// validationOutput is the classification as the model returns it. Both
// fields are required, so isRecipe is a pointer to tell false from absent.
type validationOutput struct {
	IsRecipe *bool  `json:"isRecipe"`
	Reason   string `json:"reason"`
}

func checkValidation(o *validationOutput) error {
	if o.IsRecipe == nil {
		return errors.New("isRecipe is required")
	}
	o.Reason = strings.TrimSpace(o.Reason)
	if o.Reason == "" {
		return errors.New("reason must not be empty")
	}
	return nil
}

func (o *validationOutput) result() *types.ValidationResult {
	return &types.ValidationResult{IsRecipe: *o.IsRecipe, Reason: o.Reason}
}

type ingredientOutput struct {
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Quantity *float64 `json:"quantity"`
}

type recipeOutput struct {
	Name        string             `json:"name"`
	Ingredients []ingredientOutput `json:"ingredients"`
}

// checkRecipe requires a quantity on every ingredient and then applies the
// Recipe invariants
func checkRecipe(o *recipeOutput) error {
	for i, ing := range o.Ingredients {
		if ing.Quantity == nil {
			return fmt.Errorf("ingredient %d (%q) has no quantity", i, ing.Name)
		}
	}
	return o.recipe().Validate()
}

func (o *recipeOutput) recipe() *types.Recipe {
	r := &types.Recipe{Name: o.Name, Ingredients: make([]types.Ingredient, 0, len(o.Ingredients))}
	for _, ing := range o.Ingredients {
		var quantity float64
		if ing.Quantity != nil {
			quantity = *ing.Quantity
		}
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: ing.Name, Unit: ing.Unit, Quantity: quantity})
	}
	return r
}
