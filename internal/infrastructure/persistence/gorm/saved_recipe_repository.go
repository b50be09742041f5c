package gorm

import (
	"context"
	"errors"

	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/ports/outbound"
	apperrors "github.com/recipewiz/backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedRecipeRepository implements outbound.SavedRecipeStore using GORM
type SavedRecipeRepository struct {
	db *gorm.DB
}

// NewSavedRecipeRepository creates a new saved recipe repository
func NewSavedRecipeRepository(db *gorm.DB) *SavedRecipeRepository {
	return &SavedRecipeRepository{db: db}
}

var _ outbound.SavedRecipeStore = (*SavedRecipeRepository)(nil)

// GetSavedRecipe finds one saved recipe; nil, nil when absent
func (r *SavedRecipeRepository) GetSavedRecipe(ctx context.Context, userID, recipeID int64) (*recipe.Recipe, error) {
	var model SavedRecipeModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("get saved recipe", result.Error)
	}

	saved, err := SnapshotToRecipe(model.RecipeData)
	if err != nil {
		return nil, apperrors.NewStorageError("decode saved recipe", err)
	}
	return &saved, nil
}

// GetSavedRecipes lists the user's saved recipes in save order
func (r *SavedRecipeRepository) GetSavedRecipes(ctx context.Context, userID int64) ([]recipe.Recipe, error) {
	var models []SavedRecipeModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models)

	if result.Error != nil {
		return nil, apperrors.NewStorageError("list saved recipes", result.Error)
	}

	recipes := make([]recipe.Recipe, len(models))
	for i, model := range models {
		saved, err := SnapshotToRecipe(model.RecipeData)
		if err != nil {
			return nil, apperrors.NewStorageError("decode saved recipe", err)
		}
		recipes[i] = saved
	}

	return recipes, nil
}

// SaveRecipe upserts the recipe on (user, recipe id). A recipe without an
// id gets the next free recipe id in the user's list.
func (r *SavedRecipeRepository) SaveRecipe(ctx context.Context, userID int64, rec recipe.Recipe) (recipe.Recipe, error) {
	if rec.ID() == 0 {
		return r.insertNew(ctx, userID, rec)
	}

	model := SavedRecipeToModel(userID, rec)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "recipe_data", "updated_at"}),
		}).
		Create(model)

	if result.Error != nil {
		return recipe.Recipe{}, apperrors.NewStorageError("save recipe", result.Error)
	}

	return rec.Clone(), nil
}

func (r *SavedRecipeRepository) insertNew(ctx context.Context, userID int64, rec recipe.Recipe) (recipe.Recipe, error) {
	var saved recipe.Recipe

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int64
		if err := tx.Model(&SavedRecipeModel{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(recipe_id), 0) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		saved = rec.WithID(next)
		return tx.Create(SavedRecipeToModel(userID, saved)).Error
	})
	if err != nil {
		return recipe.Recipe{}, apperrors.NewStorageError("save recipe", err)
	}

	return saved, nil
}

// RemoveRecipe deletes a saved recipe; not found when nothing matched
func (r *SavedRecipeRepository) RemoveRecipe(ctx context.Context, userID, recipeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&SavedRecipeModel{})

	if result.Error != nil {
		return apperrors.NewStorageError("remove saved recipe", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewRecipeNotFoundError(userID, recipeID)
	}

	return nil
}
