package recipe

import (
	"time"
)

// Domain Events - Events that occur within the recipe domain

// Event names
const (
	EventServingsAdjusted = "recipe.servings.adjusted"
	EventRecipeSaved      = "recipe.saved"
	EventRecipeUnsaved    = "recipe.unsaved"
)

// ServingsAdjustedEvent is raised when a batch of recipes is rescaled
type ServingsAdjustedEvent struct {
	RecipeCount int
	NewServings int
	AdjustedAt  time.Time
}

func (e ServingsAdjustedEvent) EventName() string {
	return EventServingsAdjusted
}

func (e ServingsAdjustedEvent) OccurredAt() time.Time {
	return e.AdjustedAt
}

// RecipeSavedEvent is raised when a user saves a recipe
type RecipeSavedEvent struct {
	UserID   int64
	RecipeID int64
	Title    string
	SavedAt  time.Time
}

func (e RecipeSavedEvent) EventName() string {
	return EventRecipeSaved
}

func (e RecipeSavedEvent) OccurredAt() time.Time {
	return e.SavedAt
}

// RecipeUnsavedEvent is raised when a user removes a saved recipe
type RecipeUnsavedEvent struct {
	UserID    int64
	RecipeID  int64
	RemovedAt time.Time
}

func (e RecipeUnsavedEvent) EventName() string {
	return EventRecipeUnsaved
}

func (e RecipeUnsavedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}
