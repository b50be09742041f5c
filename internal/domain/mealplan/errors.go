package mealplan

import "errors"

// Domain errors for meal plan operations

var (
	ErrInvalidUser     = errors.New("user id must be positive")
	ErrInvalidDate     = errors.New("meal date must be an ISO date (YYYY-MM-DD)")
	ErrMissingDate     = errors.New("meal date is required")
	ErrMissingMealType = errors.New("meal type is required")
	ErrMissingStatus   = errors.New("status is required")
	ErrEntryNotFound   = errors.New("meal plan entry not found")
)
