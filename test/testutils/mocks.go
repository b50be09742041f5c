// Package testutils provides mock implementations and data builders for testing
package testutils

import (
	"context"
	"sync"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockSavedRecipeStore provides a mock implementation of SavedRecipeStore
type MockSavedRecipeStore struct {
	mock.Mock
}

var _ outbound.SavedRecipeStore = (*MockSavedRecipeStore)(nil)

// GetSavedRecipe returns a saved recipe or nil
func (m *MockSavedRecipeStore) GetSavedRecipe(ctx context.Context, userID, recipeID int64) (*recipe.Recipe, error) {
	args := m.Called(ctx, userID, recipeID)
	if r, ok := args.Get(0).(*recipe.Recipe); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetSavedRecipes lists saved recipes
func (m *MockSavedRecipeStore) GetSavedRecipes(ctx context.Context, userID int64) ([]recipe.Recipe, error) {
	args := m.Called(ctx, userID)
	if rs, ok := args.Get(0).([]recipe.Recipe); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// SaveRecipe stores a recipe
func (m *MockSavedRecipeStore) SaveRecipe(ctx context.Context, userID int64, r recipe.Recipe) (recipe.Recipe, error) {
	args := m.Called(ctx, userID, r)
	if saved, ok := args.Get(0).(recipe.Recipe); ok {
		return saved, args.Error(1)
	}
	return recipe.Recipe{}, args.Error(1)
}

// RemoveRecipe deletes a saved recipe
func (m *MockSavedRecipeStore) RemoveRecipe(ctx context.Context, userID, recipeID int64) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

// MockMealPlanStore provides a mock implementation of MealPlanStore
type MockMealPlanStore struct {
	mock.Mock
}

var _ outbound.MealPlanStore = (*MockMealPlanStore)(nil)

// Insert stores an entry; the id returned in the second argument of the
// expectation (if any) is assigned to the entry.
func (m *MockMealPlanStore) Insert(ctx context.Context, entry *mealplan.Entry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil && len(args) > 1 {
		entry.AssignID(args.Get(1).(int64))
	}
	return args.Error(0)
}

// UpdateStatus sets an entry status
func (m *MockMealPlanStore) UpdateStatus(ctx context.Context, userID, entryID int64, status mealplan.Status) error {
	args := m.Called(ctx, userID, entryID, status)
	return args.Error(0)
}

// Delete removes an entry
func (m *MockMealPlanStore) Delete(ctx context.Context, userID, entryID int64) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}

// FindByDateRange lists entries in a range
func (m *MockMealPlanStore) FindByDateRange(ctx context.Context, userID int64, from, to mealplan.Date) ([]*mealplan.Entry, error) {
	args := m.Called(ctx, userID, from, to)
	if es, ok := args.Get(0).([]*mealplan.Entry); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRecipeSearchGateway provides a mock implementation of RecipeSearchGateway
type MockRecipeSearchGateway struct {
	mock.Mock
}

var _ outbound.RecipeSearchGateway = (*MockRecipeSearchGateway)(nil)

// Search queries the provider
func (m *MockRecipeSearchGateway) Search(ctx context.Context, criteria outbound.SearchCriteria) ([]recipe.Recipe, error) {
	args := m.Called(ctx, criteria)
	if rs, ok := args.Get(0).([]recipe.Recipe); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordingDispatcher is an EventDispatcher that keeps every event
type RecordingDispatcher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

var _ shared.EventDispatcher = (*RecordingDispatcher)(nil)

// NewRecordingDispatcher creates an empty recording dispatcher
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

// Dispatch records the events
func (d *RecordingDispatcher) Dispatch(_ context.Context, events ...shared.DomainEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
	return nil
}

// Register is a no-op
func (d *RecordingDispatcher) Register(string, shared.EventHandler) {}

// Events returns the recorded events
func (d *RecordingDispatcher) Events() []shared.DomainEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]shared.DomainEvent, len(d.events))
	copy(out, d.events)
	return out
}

// Names returns the names of the recorded events in order
func (d *RecordingDispatcher) Names() []string {
	events := d.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.EventName()
	}
	return names
}

// MockRecipeService provides a mock implementation of inbound.RecipeService
type MockRecipeService struct {
	mock.Mock
}

var _ inbound.RecipeService = (*MockRecipeService)(nil)

// AdjustServings rescales recipes
func (m *MockRecipeService) AdjustServings(ctx context.Context, cmd inbound.AdjustServingsCommand) ([]inbound.RecipeDTO, error) {
	args := m.Called(ctx, cmd)
	if rs, ok := args.Get(0).([]inbound.RecipeDTO); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// AnalyzeNutrition summarises a recipe
func (m *MockRecipeService) AnalyzeNutrition(ctx context.Context, r inbound.RecipeDTO) (*inbound.NutritionAnalysis, error) {
	args := m.Called(ctx, r)
	if a, ok := args.Get(0).(*inbound.NutritionAnalysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRecipes searches by ingredients
func (m *MockRecipeService) SearchRecipes(ctx context.Context, query inbound.IngredientSearchQuery) ([]inbound.RecipeDTO, error) {
	args := m.Called(ctx, query)
	if rs, ok := args.Get(0).([]inbound.RecipeDTO); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchWithRestrictions searches by food name and labels
func (m *MockRecipeService) SearchWithRestrictions(ctx context.Context, query inbound.RestrictionQuery) ([]inbound.RecipeDTO, error) {
	args := m.Called(ctx, query)
	if rs, ok := args.Get(0).([]inbound.RecipeDTO); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// SaveRecipe saves a recipe for a user
func (m *MockRecipeService) SaveRecipe(ctx context.Context, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	args := m.Called(ctx, cmd)
	if r, ok := args.Get(0).(*inbound.RecipeDTO); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetSavedRecipes lists a user's saved recipes
func (m *MockRecipeService) GetSavedRecipes(ctx context.Context, userID int64) ([]inbound.RecipeDTO, error) {
	args := m.Called(ctx, userID)
	if rs, ok := args.Get(0).([]inbound.RecipeDTO); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

// RemoveSavedRecipe deletes a saved recipe
func (m *MockRecipeService) RemoveSavedRecipe(ctx context.Context, userID, recipeID int64) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

// MockMealPlanService provides a mock implementation of inbound.MealPlanService
type MockMealPlanService struct {
	mock.Mock
}

var _ inbound.MealPlanService = (*MockMealPlanService)(nil)

// AddMeal plans a meal
func (m *MockMealPlanService) AddMeal(ctx context.Context, cmd inbound.AddMealCommand) (int64, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(int64), args.Error(1)
}

// RemoveMeal deletes an entry
func (m *MockMealPlanService) RemoveMeal(ctx context.Context, userID, entryID int64) error {
	return m.Called(ctx, userID, entryID).Error(0)
}

// UpdateMealStatus sets an entry status
func (m *MockMealPlanService) UpdateMealStatus(ctx context.Context, cmd inbound.UpdateMealStatusCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

// GetWeek lists the entries of a week
func (m *MockMealPlanService) GetWeek(ctx context.Context, query inbound.WeekQuery) ([]inbound.MealPlanEntryDTO, error) {
	args := m.Called(ctx, query)
	if es, ok := args.Get(0).([]inbound.MealPlanEntryDTO); ok {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetSavedRecipes lists the recipes that can be planned
func (m *MockMealPlanService) GetSavedRecipes(ctx context.Context, userID int64) ([]inbound.RecipeDTO, error) {
	args := m.Called(ctx, userID)
	if rs, ok := args.Get(0).([]inbound.RecipeDTO); ok {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}
