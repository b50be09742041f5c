package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/ports/inbound"
)

// RecipeHandler serves serving adjustment, nutrition, search and
// saved-recipe routes
type RecipeHandler struct {
	recipes inbound.RecipeService
	logger  *zap.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipes inbound.RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		logger:  logger.Named("recipe-handler"),
	}
}

// AdjustServingsRequest is the body of POST /api/servings/adjust
type AdjustServingsRequest struct {
	NewServings int                 `json:"newServings" binding:"required,min=1"`
	Recipes     []inbound.RecipeDTO `json:"recipes" binding:"required,min=1"`
}

// SearchRestrictedRequest is the body of POST /api/recipes/search/restricted
type SearchRestrictedRequest struct {
	FoodName     string   `json:"foodName" binding:"required"`
	DietLabels   []string `json:"dietLabels"`
	HealthLabels []string `json:"healthLabels"`
	CuisineTypes []string `json:"cuisineTypes"`
}

// AdjustServings handles POST /api/servings/adjust
func (h *RecipeHandler) AdjustServings(c *gin.Context) {
	var req AdjustServingsRequest
	if !bindJSON(c, &req) {
		return
	}

	scaled, err := h.recipes.AdjustServings(c.Request.Context(), inbound.AdjustServingsCommand{
		NewServings: req.NewServings,
		Recipes:     req.Recipes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, scaled)
}

// AnalyzeNutrition handles POST /api/nutrition/analyze and returns the
// six display strings of the summary
func (h *RecipeHandler) AnalyzeNutrition(c *gin.Context) {
	var req inbound.RecipeDTO
	if !bindJSON(c, &req) {
		return
	}

	analysis, err := h.recipes.AnalyzeNutrition(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, analysis.Lines())
}

// SearchRecipes handles GET /api/recipes/search?ingredients=a,b
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	results, err := h.recipes.SearchRecipes(c.Request.Context(), inbound.IngredientSearchQuery{
		Ingredients: splitList(c.Query("ingredients")),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// SearchWithRestrictions handles POST /api/recipes/search/restricted
func (h *RecipeHandler) SearchWithRestrictions(c *gin.Context) {
	var req SearchRestrictedRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.recipes.SearchWithRestrictions(c.Request.Context(), inbound.RestrictionQuery{
		FoodName:     req.FoodName,
		DietLabels:   req.DietLabels,
		HealthLabels: req.HealthLabels,
		CuisineTypes: req.CuisineTypes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// SaveRecipe handles POST /api/users/:userId/recipes. The body is the recipe.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req inbound.RecipeDTO
	if !bindJSON(c, &req) {
		return
	}

	saved, err := h.recipes.SaveRecipe(c.Request.Context(), inbound.SaveRecipeCommand{
		UserID: userID,
		Recipe: req,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// GetSavedRecipes handles GET /api/users/:userId/recipes
func (h *RecipeHandler) GetSavedRecipes(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	saved, err := h.recipes.GetSavedRecipes(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// RemoveSavedRecipe handles DELETE /api/users/:userId/recipes/:recipeId
func (h *RecipeHandler) RemoveSavedRecipe(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipeId")
	if !ok {
		return
	}

	if err := h.recipes.RemoveSavedRecipe(c.Request.Context(), userID, recipeID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
