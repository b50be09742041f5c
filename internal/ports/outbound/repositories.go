// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
)

// SavedRecipeStore provides access to the recipes a user has saved.
// Implementations return storage failures as *errors.AppError with
// CodeDatabaseError.
type SavedRecipeStore interface {
	// GetSavedRecipe returns nil, nil when the user has not saved the recipe
	GetSavedRecipe(ctx context.Context, userID, recipeID int64) (*recipe.Recipe, error)
	GetSavedRecipes(ctx context.Context, userID int64) ([]recipe.Recipe, error)

	// SaveRecipe upserts on (user, recipe id). A zero recipe id is replaced
	// by a newly assigned one, returned in the stored recipe.
	SaveRecipe(ctx context.Context, userID int64, r recipe.Recipe) (recipe.Recipe, error)

	// RemoveRecipe returns a not-found error when nothing was deleted
	RemoveRecipe(ctx context.Context, userID, recipeID int64) error
}

// MealPlanStore persists meal plan entries. Mutations are scoped to the
// owning user in the same statement and report a not-found error when no
// row matched.
type MealPlanStore interface {
	// Insert stores the entry and assigns its id
	Insert(ctx context.Context, entry *mealplan.Entry) error
	UpdateStatus(ctx context.Context, userID, entryID int64, status mealplan.Status) error
	Delete(ctx context.Context, userID, entryID int64) error

	// FindByDateRange returns entries with from <= date < to, ordered by
	// date then insertion order.
	FindByDateRange(ctx context.Context, userID int64, from, to mealplan.Date) ([]*mealplan.Entry, error)
}

// SearchCriteria narrows an external recipe search
type SearchCriteria struct {
	Query        string
	Ingredients  []string
	DietLabels   []string
	HealthLabels []string
	CuisineTypes []string
}

// RecipeSearchGateway queries an external recipe provider
type RecipeSearchGateway interface {
	Search(ctx context.Context, criteria SearchCriteria) ([]recipe.Recipe, error)
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
