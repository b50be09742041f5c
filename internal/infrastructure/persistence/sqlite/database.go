// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"fmt"

	"github.com/recipewiz/backend/internal/domain/recipe"
	gormModels "github.com/recipewiz/backend/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// every pooled connection to :memory: would see its own empty database
	if dbPath == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&gormModels.SavedRecipeModel{},
		&gormModels.MealPlanEntryModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedDatabase saves a couple of demo recipes for the given user
func SeedDatabase(ctx context.Context, db *gorm.DB, userID int64) error {
	// Check if data already exists
	var count int64
	if err := db.WithContext(ctx).Model(&gormModels.SavedRecipeModel{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count saved recipes: %w", err)
	}
	if count > 0 {
		return nil // Already seeded
	}

	demo := []recipe.Attributes{
		{
			Title:        "Classic Pancakes",
			Description:  "Fluffy breakfast pancakes",
			Instructions: "Whisk the dry ingredients, add milk and egg, cook on a hot griddle.",
			Servings:     4,
			Ingredients: []recipe.Ingredient{
				{Name: "flour", Quantity: 200, Unit: "g"},
				{Name: "milk", Quantity: 300, Unit: "ml"},
				{Name: "egg", Quantity: 1},
				{Name: "sugar", Quantity: 2, Unit: "tbsp"},
			},
			IngredientLines: []string{"200 g flour", "300 ml milk", "1 egg", "2 tbsp sugar"},
			Nutrition:       recipe.NewNutrition(880, 30, 18, 150, 5, 35),
		},
		{
			Title:        "Tomato Soup",
			Instructions: "Roast the tomatoes with garlic, blend with stock and season.",
			Servings:     2,
			Ingredients: []recipe.Ingredient{
				{Name: "tomatoes", Quantity: 800, Unit: "g"},
				{Name: "garlic", Quantity: 3, Unit: "cloves"},
				{Name: "vegetable stock", Quantity: 500, Unit: "ml"},
			},
			Nutrition: recipe.NewNutrition(320, 9, 11, 42, 10, 24),
		},
	}

	repo := gormModels.NewSavedRecipeRepository(db)
	for _, attrs := range demo {
		r, err := recipe.New(attrs)
		if err != nil {
			return fmt.Errorf("invalid demo recipe %q: %w", attrs.Title, err)
		}
		if _, err := repo.SaveRecipe(ctx, userID, r); err != nil {
			return fmt.Errorf("failed to seed recipe %q: %w", attrs.Title, err)
		}
	}

	return nil
}
