package testutils

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/ports/inbound"
)

var units = []string{"g", "kg", "ml", "l", "cup", "tbsp", "tsp", "pinch", ""}

// RecipeFactory builds realistic recipes for tests
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with a fixed seed
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{faker: gofakeit.New(seed)}
}

// RecipeBuilder configures a recipe before it is built
type RecipeBuilder struct {
	attrs recipe.Attributes
}

// NewRecipe starts a builder filled with random valid data
func (f *RecipeFactory) NewRecipe() *RecipeBuilder {
	count := f.faker.Number(2, 8)
	ingredients := make([]recipe.Ingredient, count)
	lines := make([]string, count)
	for i := range ingredients {
		ingredients[i] = recipe.Ingredient{
			ID:       int64(i + 1),
			Name:     f.faker.Noun(),
			Quantity: float64(f.faker.Number(1, 500)),
			Unit:     f.faker.RandomString(units),
		}
		lines[i] = f.faker.Sentence(4)
	}

	return &RecipeBuilder{attrs: recipe.Attributes{
		ID:              int64(f.faker.Number(1, 1_000_000)),
		Title:           f.faker.Dessert(),
		Description:     f.faker.Sentence(10),
		Instructions:    f.faker.Paragraph(1, 4, 12, " "),
		Servings:        f.faker.Number(1, 10),
		Ingredients:     ingredients,
		IngredientLines: lines,
		Nutrition: recipe.NewNutrition(
			float64(f.faker.Number(100, 2500)),
			float64(f.faker.Number(0, 120)),
			float64(f.faker.Number(0, 120)),
			float64(f.faker.Number(0, 300)),
			float64(f.faker.Number(0, 40)),
			float64(f.faker.Number(0, 90)),
		),
	}}
}

// WithID sets the recipe id
func (b *RecipeBuilder) WithID(id int64) *RecipeBuilder {
	b.attrs.ID = id
	return b
}

// WithTitle sets the title
func (b *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	b.attrs.Title = title
	return b
}

// WithServings sets the serving count
func (b *RecipeBuilder) WithServings(servings int) *RecipeBuilder {
	b.attrs.Servings = servings
	return b
}

// WithIngredients replaces the ingredient list
func (b *RecipeBuilder) WithIngredients(ingredients ...recipe.Ingredient) *RecipeBuilder {
	b.attrs.Ingredients = ingredients
	return b
}

// WithoutNutrition removes the nutrition profile
func (b *RecipeBuilder) WithoutNutrition() *RecipeBuilder {
	b.attrs.Nutrition = nil
	return b
}

// Build creates the recipe, panicking on invalid attributes
func (b *RecipeBuilder) Build() recipe.Recipe {
	r, err := recipe.New(b.attrs)
	if err != nil {
		panic(err)
	}
	return r
}

// BuildDTO creates the recipe as an inbound DTO
func (b *RecipeBuilder) BuildDTO() inbound.RecipeDTO {
	return inbound.NewRecipeDTO(b.Build())
}

// EntryFactory builds meal plan entries for tests
type EntryFactory struct {
	recipes *RecipeFactory
	faker   *gofakeit.Faker
}

// NewEntryFactory creates a new entry factory
func NewEntryFactory(seed int64) *EntryFactory {
	return &EntryFactory{
		recipes: NewRecipeFactory(seed),
		faker:   gofakeit.New(seed + 1),
	}
}

// MealTypes used by the web client
var MealTypes = []string{"Breakfast", "Lunch", "Dinner", "Snack"}

// NewEntry creates an unsaved entry for the user on the given day
func (f *EntryFactory) NewEntry(userID int64, date mealplan.Date) *mealplan.Entry {
	e, err := mealplan.NewEntry(userID, f.recipes.NewRecipe().Build(), date, f.faker.RandomString(MealTypes))
	if err != nil {
		panic(err)
	}
	return e
}

// Date parses an ISO date, panicking on malformed input
func Date(s string) mealplan.Date {
	d, err := mealplan.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
