// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/recipewiz/backend/internal/domain/recipe"
)

// RecipeService defines the recipe use cases: serving adjustment,
// nutrition analysis, external search and saved-recipe management
type RecipeService interface {
	// Transformations - pure, nothing is persisted
	AdjustServings(ctx context.Context, cmd AdjustServingsCommand) ([]RecipeDTO, error)
	AnalyzeNutrition(ctx context.Context, r RecipeDTO) (*NutritionAnalysis, error)

	// External search
	SearchRecipes(ctx context.Context, query IngredientSearchQuery) ([]RecipeDTO, error)
	SearchWithRestrictions(ctx context.Context, query RestrictionQuery) ([]RecipeDTO, error)

	// Saved recipes
	SaveRecipe(ctx context.Context, cmd SaveRecipeCommand) (*RecipeDTO, error)
	GetSavedRecipes(ctx context.Context, userID int64) ([]RecipeDTO, error)
	RemoveSavedRecipe(ctx context.Context, userID, recipeID int64) error
}

// Command objects for operations

// AdjustServingsCommand rescales a batch of recipes to one serving count
type AdjustServingsCommand struct {
	NewServings int
	Recipes     []RecipeDTO
}

// SaveRecipeCommand adds a recipe to a user's saved recipes
type SaveRecipeCommand struct {
	UserID int64
	Recipe RecipeDTO
}

// Query objects

// IngredientSearchQuery searches by free-text ingredients
type IngredientSearchQuery struct {
	Ingredients []string
}

// RestrictionQuery searches by food name narrowed by facet labels
type RestrictionQuery struct {
	FoodName     string   `json:"foodName"`
	DietLabels   []string `json:"dietLabels"`
	HealthLabels []string `json:"healthLabels"`
	CuisineTypes []string `json:"cuisineTypes"`
}

// Response DTOs

// RecipeDTO is the data transfer object for recipes
type RecipeDTO struct {
	RecipeID        int64           `json:"recipeId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Instructions    string          `json:"instructions"`
	Servings        int             `json:"servings"`
	Ingredients     []IngredientDTO `json:"ingredients"`
	IngredientLines []string        `json:"ingredientLines"`
	Nutrition       *NutritionDTO   `json:"nutrition"`
}

// IngredientDTO for ingredient data
type IngredientDTO struct {
	IngredientID int64   `json:"ingredientId"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// NutritionDTO for nutrition information
type NutritionDTO struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fiber         float64 `json:"fiber"`
	Sugar         float64 `json:"sugar"`
}

// NutrientFactDTO is one entry of a nutrition summary
type NutrientFactDTO struct {
	Nutrient string  `json:"nutrient"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Text     string  `json:"text"`
}

// NutritionAnalysis is the six-fact summary of a recipe
type NutritionAnalysis struct {
	RecipeID int64             `json:"recipeId"`
	Facts    []NutrientFactDTO `json:"facts"`
}

// Lines returns the display strings of the facts
func (a *NutritionAnalysis) Lines() []string {
	lines := make([]string, len(a.Facts))
	for i, f := range a.Facts {
		lines[i] = f.Text
	}
	return lines
}

// ToDomain converts the DTO to a validated recipe
func (d RecipeDTO) ToDomain() (recipe.Recipe, error) {
	ingredients := make([]recipe.Ingredient, len(d.Ingredients))
	for i, ing := range d.Ingredients {
		ingredients[i] = recipe.Ingredient{
			ID:       ing.IngredientID,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
	}

	var nutrition *recipe.Nutrition
	if n := d.Nutrition; n != nil {
		nutrition = recipe.NewNutrition(n.Calories, n.Protein, n.Fat, n.Carbohydrates, n.Fiber, n.Sugar)
	}

	return recipe.New(recipe.Attributes{
		ID:              d.RecipeID,
		Title:           d.Title,
		Description:     d.Description,
		Instructions:    d.Instructions,
		Servings:        d.Servings,
		Ingredients:     ingredients,
		IngredientLines: d.IngredientLines,
		Nutrition:       nutrition,
	})
}

// NewRecipeDTO converts a domain recipe to its DTO
func NewRecipeDTO(r recipe.Recipe) RecipeDTO {
	attrs := r.Attributes()

	ingredients := make([]IngredientDTO, len(attrs.Ingredients))
	for i, ing := range attrs.Ingredients {
		ingredients[i] = IngredientDTO{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
		}
	}

	dto := RecipeDTO{
		RecipeID:        attrs.ID,
		Title:           attrs.Title,
		Description:     attrs.Description,
		Instructions:    attrs.Instructions,
		Servings:        attrs.Servings,
		Ingredients:     ingredients,
		IngredientLines: attrs.IngredientLines,
	}

	if n := attrs.Nutrition; n != nil {
		dto.Nutrition = &NutritionDTO{
			Calories:      n.Calories,
			Protein:       n.Protein,
			Fat:           n.Fat,
			Carbohydrates: n.Carbohydrates,
			Fiber:         n.Fiber,
			Sugar:         n.Sugar,
		}
	}

	return dto
}

// NewRecipeDTOs converts a list of domain recipes
func NewRecipeDTOs(recipes []recipe.Recipe) []RecipeDTO {
	dtos := make([]RecipeDTO, len(recipes))
	for i, r := range recipes {
		dtos[i] = NewRecipeDTO(r)
	}
	return dtos
}
