package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrInvalidServings       = errors.New("servings must be at least 1")
	ErrInvalidIngredientName = errors.New("ingredient name is required")
	ErrInvalidQuantity       = errors.New("ingredient quantity must be a non-negative number")

	// Scaling errors
	ErrInvalidTargetServings = errors.New("new servings must be at least 1")

	// Lookup errors
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrRecipeNotSaved = errors.New("recipe not in saved recipes")
)
