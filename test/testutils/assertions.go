// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/pkg/errors"
)

// RecipeAssertions provides recipe-specific assertion methods
type RecipeAssertions struct {
	t *testing.T
}

// NewRecipeAssertions creates a new recipe assertions helper
func NewRecipeAssertions(t *testing.T) *RecipeAssertions {
	return &RecipeAssertions{t: t}
}

// ScaledFrom asserts that scaled is original adjusted to servings: every
// quantity multiplied by servings/original servings, the rest untouched
func (ra *RecipeAssertions) ScaledFrom(original, scaled recipe.Recipe, servings int) {
	ra.t.Helper()

	factor := float64(servings) / float64(original.Servings())

	assert.Equal(ra.t, servings, scaled.Servings(), "servings")
	assert.Equal(ra.t, original.ID(), scaled.ID(), "id")
	assert.Equal(ra.t, original.Title(), scaled.Title(), "title")
	assert.Equal(ra.t, original.IngredientLines(), scaled.IngredientLines(), "ingredient lines")

	before, after := original.Ingredients(), scaled.Ingredients()
	require.Len(ra.t, after, len(before), "ingredient count")
	for i := range before {
		assert.Equal(ra.t, before[i].Name, after[i].Name)
		assert.Equal(ra.t, before[i].Unit, after[i].Unit)
		assert.InDelta(ra.t, before[i].Quantity*factor, after[i].Quantity, 1e-9, "quantity of %s", before[i].Name)
	}

	if !original.HasNutrition() {
		assert.False(ra.t, scaled.HasNutrition(), "nutrition should stay absent")
		return
	}

	want, got := original.Nutrition(), scaled.Nutrition()
	require.NotNil(ra.t, got)
	assert.InDelta(ra.t, want.Calories*factor, got.Calories, 1e-9, "calories")
	assert.InDelta(ra.t, want.Protein*factor, got.Protein, 1e-9, "protein")
	assert.InDelta(ra.t, want.Fat*factor, got.Fat, 1e-9, "fat")
	assert.InDelta(ra.t, want.Carbohydrates*factor, got.Carbohydrates, 1e-9, "carbohydrates")
	assert.InDelta(ra.t, want.Fiber*factor, got.Fiber, 1e-9, "fiber")
	assert.InDelta(ra.t, want.Sugar*factor, got.Sugar, 1e-9, "sugar")
}

// Finite asserts every quantity in the recipe is a finite number
func (ra *RecipeAssertions) Finite(r recipe.Recipe) {
	ra.t.Helper()
	for _, ing := range r.Ingredients() {
		assert.False(ra.t, math.IsNaN(ing.Quantity) || math.IsInf(ing.Quantity, 0), "quantity of %s", ing.Name)
	}
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	ha.t.Helper()
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	ha.t.Helper()

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON")
}

// ErrorCode asserts the status and the error code of an error response
func (ha *HTTPAssertions) ErrorCode(rec *httptest.ResponseRecorder, status int, code errors.ErrorCode) errors.ErrorDetails {
	ha.t.Helper()

	ha.StatusCode(rec, status, rec.Body.String())

	var resp errors.ErrorResponse
	ha.JSONResponse(rec, &resp)
	assert.Equal(ha.t, code, resp.Error.Code)
	assert.NotEmpty(ha.t, resp.Error.Timestamp)
	return resp.Error
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(rec *httptest.ResponseRecorder, headerName, expectedValue string) {
	ha.t.Helper()
	assert.Equal(ha.t, expectedValue, rec.Header().Get(headerName))
}

// HasHeader asserts that a header exists
func (ha *HTTPAssertions) HasHeader(rec *httptest.ResponseRecorder, headerName string) {
	ha.t.Helper()
	assert.NotEmpty(ha.t, rec.Header().Get(headerName), "Response should have header %s", headerName)
}
