package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/http/middleware"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/errors"
	"github.com/recipewiz/backend/test/testutils"
)

type HandlersTestSuite struct {
	suite.Suite
	recipes   *testutils.MockRecipeService
	mealPlans *testutils.MockMealPlanService
	router    *gin.Engine
	factory   *testutils.RecipeFactory
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(RegisterValidators())
}

func (s *HandlersTestSuite) SetupTest() {
	s.recipes = new(testutils.MockRecipeService)
	s.mealPlans = new(testutils.MockMealPlanService)
	s.factory = testutils.NewRecipeFactory(7)

	cfg := &config.Config{}
	mw := middleware.New(cfg, noop.NewTracerProvider().Tracer("test"), zap.NewNop())

	recipeHandler := NewRecipeHandler(s.recipes, zap.NewNop())
	mealPlanHandler := NewMealPlanHandler(s.mealPlans, zap.NewNop())

	r := gin.New()
	r.Use(mw.RequestID(), mw.ErrorHandler())
	api := r.Group("/api")
	api.POST("/servings/adjust", recipeHandler.AdjustServings)
	api.POST("/nutrition/analyze", recipeHandler.AnalyzeNutrition)
	api.GET("/recipes/search", recipeHandler.SearchRecipes)
	api.POST("/recipes/search/restricted", recipeHandler.SearchWithRestrictions)

	users := api.Group("/users/:userId")
	users.GET("/recipes", recipeHandler.GetSavedRecipes)
	users.POST("/recipes", recipeHandler.SaveRecipe)
	users.DELETE("/recipes/:recipeId", recipeHandler.RemoveSavedRecipe)
	users.GET("/meal-plan", mealPlanHandler.GetWeek)
	users.POST("/meal-plan", mealPlanHandler.AddMeal)
	users.GET("/meal-plan/saved-recipes", mealPlanHandler.GetSavedRecipes)
	users.PATCH("/meal-plan/:entryId", mealPlanHandler.UpdateMealStatus)
	users.DELETE("/meal-plan/:entryId", mealPlanHandler.RemoveMeal)

	s.router = r
}

func (s *HandlersTestSuite) TearDownTest() {
	s.recipes.AssertExpectations(s.T())
	s.mealPlans.AssertExpectations(s.T())
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) TestAdjustServings() {
	dto := s.factory.NewRecipe().WithServings(2).BuildDTO()
	scaled := dto
	scaled.Servings = 4

	s.recipes.On("AdjustServings", mock.Anything, inbound.AdjustServingsCommand{
		NewServings: 4,
		Recipes:     []inbound.RecipeDTO{dto},
	}).Return([]inbound.RecipeDTO{scaled}, nil).Once()

	rec := s.do(http.MethodPost, "/api/servings/adjust", AdjustServingsRequest{NewServings: 4, Recipes: []inbound.RecipeDTO{dto}})

	ha := testutils.NewHTTPAssertions(s.T())
	ha.StatusCode(rec, http.StatusOK)
	var got []inbound.RecipeDTO
	ha.JSONResponse(rec, &got)
	s.Require().Len(got, 1)
	s.Equal(4, got[0].Servings)
	s.Equal(dto.Title, got[0].Title)
}

func (s *HandlersTestSuite) TestAdjustServings_Validation() {
	dto := s.factory.NewRecipe().BuildDTO()
	ha := testutils.NewHTTPAssertions(s.T())

	tests := []struct {
		name string
		body interface{}
		code errors.ErrorCode
	}{
		{"zero servings", AdjustServingsRequest{NewServings: 0, Recipes: []inbound.RecipeDTO{dto}}, errors.CodeValidationFailed},
		{"negative servings", AdjustServingsRequest{NewServings: -2, Recipes: []inbound.RecipeDTO{dto}}, errors.CodeValidationFailed},
		{"empty batch", AdjustServingsRequest{NewServings: 2, Recipes: []inbound.RecipeDTO{}}, errors.CodeValidationFailed},
		{"malformed body", `{"newServings": "two"`, errors.CodeBadRequest},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, "/api/servings/adjust", tt.body)
			ha.ErrorCode(rec, http.StatusBadRequest, tt.code)
		})
	}
}

func (s *HandlersTestSuite) TestAnalyzeNutrition_ReturnsLines() {
	dto := s.factory.NewRecipe().BuildDTO()
	analysis := &inbound.NutritionAnalysis{
		RecipeID: dto.RecipeID,
		Facts: []inbound.NutrientFactDTO{
			{Nutrient: "calories", Text: "Calories: 250.00 kcal"},
			{Nutrient: "protein", Text: "Protein: 12.50 g"},
		},
	}
	s.recipes.On("AnalyzeNutrition", mock.Anything, dto).Return(analysis, nil).Once()

	rec := s.do(http.MethodPost, "/api/nutrition/analyze", dto)

	ha := testutils.NewHTTPAssertions(s.T())
	ha.StatusCode(rec, http.StatusOK)
	var lines []string
	ha.JSONResponse(rec, &lines)
	s.Equal([]string{"Calories: 250.00 kcal", "Protein: 12.50 g"}, lines)
}

func (s *HandlersTestSuite) TestSearchRecipes_SplitsIngredients() {
	s.recipes.On("SearchRecipes", mock.Anything, inbound.IngredientSearchQuery{
		Ingredients: []string{"chicken", "rice"},
	}).Return([]inbound.RecipeDTO{}, nil).Once()

	rec := s.do(http.MethodGet, "/api/recipes/search?ingredients=chicken,%20rice,,", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *HandlersTestSuite) TestSearchWithRestrictions() {
	ha := testutils.NewHTTPAssertions(s.T())

	s.Run("food name required", func() {
		rec := s.do(http.MethodPost, "/api/recipes/search/restricted", SearchRestrictedRequest{DietLabels: []string{"balanced"}})
		details := ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
		s.Contains(details.Details, "FoodName is required")
	})

	s.Run("provider failure", func() {
		s.recipes.On("SearchWithRestrictions", mock.Anything, inbound.RestrictionQuery{
			FoodName:   "pasta",
			DietLabels: []string{"low-fat"},
		}).Return(nil, errors.NewExternalServiceError("recipe search", assert.AnError)).Once()

		rec := s.do(http.MethodPost, "/api/recipes/search/restricted", SearchRestrictedRequest{
			FoodName:   "pasta",
			DietLabels: []string{"low-fat"},
		})
		ha.ErrorCode(rec, http.StatusBadGateway, errors.CodeExternalServiceError)
	})
}

func (s *HandlersTestSuite) TestSavedRecipes() {
	ha := testutils.NewHTTPAssertions(s.T())
	dto := s.factory.NewRecipe().WithID(0).BuildDTO()
	saved := dto
	saved.RecipeID = 11

	s.Run("save", func() {
		s.recipes.On("SaveRecipe", mock.Anything, inbound.SaveRecipeCommand{UserID: 3, Recipe: dto}).
			Return(&saved, nil).Once()

		rec := s.do(http.MethodPost, "/api/users/3/recipes", dto)
		ha.StatusCode(rec, http.StatusCreated)
		var got inbound.RecipeDTO
		ha.JSONResponse(rec, &got)
		s.Equal(int64(11), got.RecipeID)
	})

	s.Run("list", func() {
		s.recipes.On("GetSavedRecipes", mock.Anything, int64(3)).Return([]inbound.RecipeDTO{saved}, nil).Once()

		rec := s.do(http.MethodGet, "/api/users/3/recipes", nil)
		ha.StatusCode(rec, http.StatusOK)
		var got []inbound.RecipeDTO
		ha.JSONResponse(rec, &got)
		s.Len(got, 1)
	})

	s.Run("remove", func() {
		s.recipes.On("RemoveSavedRecipe", mock.Anything, int64(3), int64(11)).Return(nil).Once()

		rec := s.do(http.MethodDelete, "/api/users/3/recipes/11", nil)
		ha.StatusCode(rec, http.StatusNoContent)
	})

	s.Run("remove missing", func() {
		s.recipes.On("RemoveSavedRecipe", mock.Anything, int64(3), int64(99)).
			Return(errors.NewRecipeNotFoundError(3, 99)).Once()

		rec := s.do(http.MethodDelete, "/api/users/3/recipes/99", nil)
		ha.ErrorCode(rec, http.StatusNotFound, errors.CodeRecipeNotFound)
	})

	s.Run("bad user id", func() {
		rec := s.do(http.MethodGet, "/api/users/abc/recipes", nil)
		ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)

		rec = s.do(http.MethodGet, "/api/users/0/recipes", nil)
		ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
	})
}

func (s *HandlersTestSuite) TestGetWeek() {
	ha := testutils.NewHTTPAssertions(s.T())

	s.Run("week start required", func() {
		rec := s.do(http.MethodGet, "/api/users/5/meal-plan", nil)
		ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
	})

	s.Run("lists entries", func() {
		entries := []inbound.MealPlanEntryDTO{
			{EntryID: 1, UserID: 5, MealDate: "2024-03-04", MealType: "Dinner", Status: "planned"},
		}
		s.mealPlans.On("GetWeek", mock.Anything, inbound.WeekQuery{UserID: 5, WeekStart: "2024-03-04"}).
			Return(entries, nil).Once()

		rec := s.do(http.MethodGet, "/api/users/5/meal-plan?weekStart=2024-03-04", nil)
		ha.StatusCode(rec, http.StatusOK)
		var got []inbound.MealPlanEntryDTO
		ha.JSONResponse(rec, &got)
		s.Equal(entries, got)
	})
}

func (s *HandlersTestSuite) TestAddMeal() {
	ha := testutils.NewHTTPAssertions(s.T())

	s.Run("created", func() {
		s.mealPlans.On("AddMeal", mock.Anything, inbound.AddMealCommand{
			UserID:   5,
			RecipeID: 11,
			MealDate: "2024-03-06",
			MealType: "Lunch",
		}).Return(int64(42), nil).Once()

		rec := s.do(http.MethodPost, "/api/users/5/meal-plan", AddMealRequest{RecipeID: 11, MealDate: "2024-03-06", MealType: "Lunch"})
		ha.StatusCode(rec, http.StatusCreated)
		var got AddMealResponse
		ha.JSONResponse(rec, &got)
		s.Equal(int64(42), got.EntryID)
	})

	s.Run("invalid date", func() {
		rec := s.do(http.MethodPost, "/api/users/5/meal-plan", AddMealRequest{RecipeID: 11, MealDate: "06/03/2024", MealType: "Lunch"})
		details := ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
		s.Contains(details.Details, "YYYY-MM-DD")
	})

	s.Run("meal type longer than the column", func() {
		rec := s.do(http.MethodPost, "/api/users/5/meal-plan", AddMealRequest{RecipeID: 11, MealDate: "2024-03-06", MealType: strings.Repeat("x", 51)})
		details := ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
		s.Contains(details.Details, "MealType must be at most 50 characters")
	})

	s.Run("meal type at the column limit", func() {
		mealType := strings.Repeat("x", 50)
		s.mealPlans.On("AddMeal", mock.Anything, inbound.AddMealCommand{
			UserID:   5,
			RecipeID: 11,
			MealDate: "2024-03-06",
			MealType: mealType,
		}).Return(int64(43), nil).Once()

		rec := s.do(http.MethodPost, "/api/users/5/meal-plan", AddMealRequest{RecipeID: 11, MealDate: "2024-03-06", MealType: mealType})
		ha.StatusCode(rec, http.StatusCreated)
	})

	s.Run("recipe not saved", func() {
		s.mealPlans.On("AddMeal", mock.Anything, mock.AnythingOfType("inbound.AddMealCommand")).
			Return(int64(0), errors.NewRecipeNotFoundError(5, 12)).Once()

		rec := s.do(http.MethodPost, "/api/users/5/meal-plan", AddMealRequest{RecipeID: 12, MealDate: "2024-03-06", MealType: "Lunch"})
		ha.ErrorCode(rec, http.StatusNotFound, errors.CodeRecipeNotFound)
	})
}

func (s *HandlersTestSuite) TestUpdateMealStatus() {
	ha := testutils.NewHTTPAssertions(s.T())

	s.Run("updated", func() {
		s.mealPlans.On("UpdateMealStatus", mock.Anything, inbound.UpdateMealStatusCommand{
			UserID:  5,
			EntryID: 42,
			Status:  "cooked",
		}).Return(nil).Once()

		rec := s.do(http.MethodPatch, "/api/users/5/meal-plan/42", UpdateStatusRequest{Status: "cooked"})
		ha.StatusCode(rec, http.StatusNoContent)
	})

	s.Run("blank status", func() {
		rec := s.do(http.MethodPatch, "/api/users/5/meal-plan/42", UpdateStatusRequest{Status: "   "})
		ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
	})

	s.Run("status longer than the column", func() {
		rec := s.do(http.MethodPatch, "/api/users/5/meal-plan/42", UpdateStatusRequest{Status: strings.Repeat("y", 51)})
		ha.ErrorCode(rec, http.StatusBadRequest, errors.CodeValidationFailed)
	})

	s.Run("other user's entry", func() {
		s.mealPlans.On("UpdateMealStatus", mock.Anything, inbound.UpdateMealStatusCommand{
			UserID:  6,
			EntryID: 42,
			Status:  "skipped",
		}).Return(errors.NewEntryNotFoundError(6, 42)).Once()

		rec := s.do(http.MethodPatch, "/api/users/6/meal-plan/42", UpdateStatusRequest{Status: "skipped"})
		ha.ErrorCode(rec, http.StatusNotFound, errors.CodeEntryNotFound)
	})
}

func (s *HandlersTestSuite) TestRemoveMealAndPicker() {
	ha := testutils.NewHTTPAssertions(s.T())

	s.mealPlans.On("RemoveMeal", mock.Anything, int64(5), int64(42)).Return(nil).Once()
	rec := s.do(http.MethodDelete, "/api/users/5/meal-plan/42", nil)
	ha.StatusCode(rec, http.StatusNoContent)

	s.mealPlans.On("GetSavedRecipes", mock.Anything, int64(5)).Return([]inbound.RecipeDTO{}, nil).Once()
	rec = s.do(http.MethodGet, "/api/users/5/meal-plan/saved-recipes", nil)
	ha.StatusCode(rec, http.StatusOK)
	s.JSONEq(`[]`, rec.Body.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"egg"}, splitList(" egg "))
	assert.Equal(t, []string{"egg", "flour"}, splitList("egg,,flour, "))
}

func TestBindingError_MapsFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"recipeId":0,"mealDate":"","mealType":""}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	var req AddMealRequest
	assert.False(t, bindJSON(c, &req))
	require.Len(t, c.Errors, 1)

	appErr, ok := errors.As(c.Errors.Last().Err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationFailed, appErr.Code)

	fields, ok := appErr.Metadata["validation_errors"].(errors.ValidationErrors)
	require.True(t, ok)
	assert.Len(t, fields, 3)
}
