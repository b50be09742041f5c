package inbound

import (
	"context"

	"github.com/recipewiz/backend/internal/domain/mealplan"
)

// MealPlanService defines the meal-planning calendar use cases
type MealPlanService interface {
	// Commands
	AddMeal(ctx context.Context, cmd AddMealCommand) (int64, error)
	RemoveMeal(ctx context.Context, userID, entryID int64) error
	UpdateMealStatus(ctx context.Context, cmd UpdateMealStatusCommand) error

	// Queries
	GetWeek(ctx context.Context, query WeekQuery) ([]MealPlanEntryDTO, error)
	GetSavedRecipes(ctx context.Context, userID int64) ([]RecipeDTO, error)
}

// AddMealCommand plans a saved recipe on a day
type AddMealCommand struct {
	UserID   int64
	RecipeID int64
	MealDate string // YYYY-MM-DD
	MealType string
}

// UpdateMealStatusCommand sets the status label of an entry
type UpdateMealStatusCommand struct {
	UserID  int64
	EntryID int64
	Status  string
}

// WeekQuery selects the seven days starting at WeekStart
type WeekQuery struct {
	UserID    int64
	WeekStart string // YYYY-MM-DD, any weekday
}

// MealPlanEntryDTO is the data transfer object for calendar entries
type MealPlanEntryDTO struct {
	EntryID  int64     `json:"entryId"`
	UserID   int64     `json:"userId"`
	Recipe   RecipeDTO `json:"recipe"`
	MealDate string    `json:"mealDate"`
	MealType string    `json:"mealType"`
	Status   string    `json:"status"`
}

// NewMealPlanEntryDTO converts a domain entry to its DTO
func NewMealPlanEntryDTO(e *mealplan.Entry) MealPlanEntryDTO {
	return MealPlanEntryDTO{
		EntryID:  e.ID(),
		UserID:   e.UserID(),
		Recipe:   NewRecipeDTO(e.Recipe()),
		MealDate: e.Date().String(),
		MealType: e.MealType(),
		Status:   string(e.Status()),
	}
}
