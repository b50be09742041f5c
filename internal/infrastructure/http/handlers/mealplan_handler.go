package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/errors"
)

// MealPlanHandler serves the meal-plan calendar routes
type MealPlanHandler struct {
	mealPlans inbound.MealPlanService
	logger    *zap.Logger
}

// NewMealPlanHandler creates a new meal plan handler
func NewMealPlanHandler(mealPlans inbound.MealPlanService, logger *zap.Logger) *MealPlanHandler {
	return &MealPlanHandler{
		mealPlans: mealPlans,
		logger:    logger.Named("mealplan-handler"),
	}
}

// AddMealRequest is the body of POST /api/users/:userId/meal-plan
type AddMealRequest struct {
	RecipeID int64  `json:"recipeId" binding:"required,min=1"`
	MealDate string `json:"mealDate" binding:"required,isodate"`
	MealType string `json:"mealType" binding:"required,max=50"`
}

// AddMealResponse carries the id of the new entry
type AddMealResponse struct {
	EntryID int64 `json:"entryId"`
}

// UpdateStatusRequest is the body of PATCH /api/users/:userId/meal-plan/:entryId
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"mealstatus,max=50"`
}

// GetWeek handles GET /api/users/:userId/meal-plan?weekStart=YYYY-MM-DD
func (h *MealPlanHandler) GetWeek(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	weekStart := c.Query("weekStart")
	if weekStart == "" {
		_ = c.Error(errors.NewValidationError("weekStart query parameter is required"))
		return
	}

	week, err := h.mealPlans.GetWeek(c.Request.Context(), inbound.WeekQuery{
		UserID:    userID,
		WeekStart: weekStart,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, week)
}

// AddMeal handles POST /api/users/:userId/meal-plan
func (h *MealPlanHandler) AddMeal(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req AddMealRequest
	if !bindJSON(c, &req) {
		return
	}

	entryID, err := h.mealPlans.AddMeal(c.Request.Context(), inbound.AddMealCommand{
		UserID:   userID,
		RecipeID: req.RecipeID,
		MealDate: req.MealDate,
		MealType: req.MealType,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, AddMealResponse{EntryID: entryID})
}

// RemoveMeal handles DELETE /api/users/:userId/meal-plan/:entryId
func (h *MealPlanHandler) RemoveMeal(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryId")
	if !ok {
		return
	}

	if err := h.mealPlans.RemoveMeal(c.Request.Context(), userID, entryID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateMealStatus handles PATCH /api/users/:userId/meal-plan/:entryId
func (h *MealPlanHandler) UpdateMealStatus(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryId")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.mealPlans.UpdateMealStatus(c.Request.Context(), inbound.UpdateMealStatusCommand{
		UserID:  userID,
		EntryID: entryID,
		Status:  req.Status,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSavedRecipes handles GET /api/users/:userId/meal-plan/saved-recipes,
// the picker list for planning a meal
func (h *MealPlanHandler) GetSavedRecipes(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	saved, err := h.mealPlans.GetSavedRecipes(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, saved)
}
