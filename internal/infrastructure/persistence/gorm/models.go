// Package gorm provides GORM model definitions and repositories for
// saved recipes and meal plan entries
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SavedRecipeModel is one recipe in a user's saved list. The full recipe
// is kept as a JSON document.
type SavedRecipeModel struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	UserID     int64          `gorm:"not null;uniqueIndex:idx_saved_recipes_user_recipe,priority:1"`
	RecipeID   int64          `gorm:"not null;uniqueIndex:idx_saved_recipes_user_recipe,priority:2"`
	Title      string         `gorm:"type:text"`
	RecipeData RecipeSnapshot `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name
func (SavedRecipeModel) TableName() string {
	return "saved_recipes"
}

// MealPlanEntryModel is one calendar entry. RecipeData is a snapshot
// taken when the meal was planned, not a reference.
type MealPlanEntryModel struct {
	EntryID    int64          `gorm:"column:entry_id;primaryKey;autoIncrement"`
	UserID     int64          `gorm:"not null;index:idx_meal_plan_user_date,priority:1"`
	RecipeID   int64          `gorm:"not null"`
	RecipeData RecipeSnapshot `gorm:"type:text;not null"`
	MealDate   string         `gorm:"type:varchar(10);not null;index:idx_meal_plan_user_date,priority:2"`
	MealType   string         `gorm:"type:varchar(50);not null"`
	Status     string         `gorm:"type:varchar(50);not null;default:planned"`
	CreatedAt  time.Time
}

// TableName overrides the table name
func (MealPlanEntryModel) TableName() string {
	return "meal_plan_entries"
}

// RecipeSnapshot is the JSON document stored in recipe_data columns
type RecipeSnapshot struct {
	RecipeID        int64                `json:"recipeId"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Instructions    string               `json:"instructions,omitempty"`
	Servings        int                  `json:"servings"`
	Ingredients     []IngredientSnapshot `json:"ingredients"`
	IngredientLines []string             `json:"ingredientLines,omitempty"`
	Nutrition       *NutritionSnapshot   `json:"nutrition,omitempty"`
}

// IngredientSnapshot is an ingredient inside a RecipeSnapshot
type IngredientSnapshot struct {
	IngredientID int64   `json:"ingredientId"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
}

// NutritionSnapshot is the nutrition inside a RecipeSnapshot
type NutritionSnapshot struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
}

// Value implements driver.Valuer
func (s RecipeSnapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (s *RecipeSnapshot) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*s = RecipeSnapshot{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into RecipeSnapshot", value)
	}
	return json.Unmarshal(data, s)
}
