package gorm

import (
	"fmt"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
)

// RecipeToSnapshot converts a domain recipe to its stored document
func RecipeToSnapshot(r recipe.Recipe) RecipeSnapshot {
	attrs := r.Attributes()

	snapshot := RecipeSnapshot{
		RecipeID:        attrs.ID,
		Title:           attrs.Title,
		Description:     attrs.Description,
		Instructions:    attrs.Instructions,
		Servings:        attrs.Servings,
		Ingredients:     make([]IngredientSnapshot, len(attrs.Ingredients)),
		IngredientLines: attrs.IngredientLines,
	}

	for i, ing := range attrs.Ingredients {
		snapshot.Ingredients[i] = IngredientSnapshot{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Quantity:     ing.Quantity,
			Unit:         ing.Unit,
		}
	}

	if n := attrs.Nutrition; n != nil {
		snapshot.Nutrition = &NutritionSnapshot{
			Calories:      n.Calories,
			Protein:       n.Protein,
			Fat:           n.Fat,
			Carbohydrates: n.Carbohydrates,
			Fiber:         n.Fiber,
			Sugar:         n.Sugar,
		}
	}

	return snapshot
}

// SnapshotToRecipe converts a stored document back to a domain recipe
func SnapshotToRecipe(s RecipeSnapshot) (recipe.Recipe, error) {
	ingredients := make([]recipe.Ingredient, len(s.Ingredients))
	for i, ing := range s.Ingredients {
		ingredients[i] = recipe.Ingredient{
			ID:       ing.IngredientID,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
	}

	var nutrition *recipe.Nutrition
	if n := s.Nutrition; n != nil {
		nutrition = recipe.NewNutrition(n.Calories, n.Protein, n.Fat, n.Carbohydrates, n.Fiber, n.Sugar)
	}

	r, err := recipe.New(recipe.Attributes{
		ID:              s.RecipeID,
		Title:           s.Title,
		Description:     s.Description,
		Instructions:    s.Instructions,
		Servings:        s.Servings,
		Ingredients:     ingredients,
		IngredientLines: s.IngredientLines,
		Nutrition:       nutrition,
	})
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("corrupt recipe snapshot %d: %w", s.RecipeID, err)
	}
	return r, nil
}

// SavedRecipeToModel converts a user's saved recipe to a GORM model
func SavedRecipeToModel(userID int64, r recipe.Recipe) *SavedRecipeModel {
	return &SavedRecipeModel{
		UserID:     userID,
		RecipeID:   r.ID(),
		Title:      r.Title(),
		RecipeData: RecipeToSnapshot(r),
	}
}

// EntryToModel converts a domain entry to a GORM model
func EntryToModel(e *mealplan.Entry) *MealPlanEntryModel {
	snapshot := e.Recipe()
	return &MealPlanEntryModel{
		EntryID:    e.ID(),
		UserID:     e.UserID(),
		RecipeID:   snapshot.ID(),
		RecipeData: RecipeToSnapshot(snapshot),
		MealDate:   e.Date().String(),
		MealType:   e.MealType(),
		Status:     string(e.Status()),
	}
}

// ModelToEntry converts a GORM model to a domain entry
func ModelToEntry(m *MealPlanEntryModel) (*mealplan.Entry, error) {
	snapshot, err := SnapshotToRecipe(m.RecipeData)
	if err != nil {
		return nil, err
	}

	date, err := mealplan.ParseDate(m.MealDate)
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", m.EntryID, err)
	}

	return mealplan.Reconstruct(
		m.EntryID,
		m.UserID,
		snapshot,
		date,
		m.MealType,
		mealplan.Status(m.Status),
	), nil
}
