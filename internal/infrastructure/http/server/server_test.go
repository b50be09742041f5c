package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	appmealplan "github.com/recipewiz/backend/internal/application/mealplan"
	apprecipe "github.com/recipewiz/backend/internal/application/recipe"
	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/http/handlers"
	"github.com/recipewiz/backend/internal/infrastructure/monitoring"
	gormrepo "github.com/recipewiz/backend/internal/infrastructure/persistence/gorm"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/memory"
	"github.com/recipewiz/backend/internal/infrastructure/persistence/sqlite"
	"github.com/recipewiz/backend/internal/infrastructure/security"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/errors"
	"github.com/recipewiz/backend/test/testutils"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "RecipeWiz", Version: "test", Environment: "test"},
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
			EnableCORS:     true,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", Issuer: "recipewiz"},
	}
}

type ServerTestSuite struct {
	suite.Suite
	cfg      *config.Config
	search   *testutils.MockRecipeSearchGateway
	events   *testutils.RecordingDispatcher
	registry *prometheus.Registry
	auth     *security.AuthService
	server   *Server
	factory  *testutils.RecipeFactory
}

func (s *ServerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *ServerTestSuite) SetupTest() {
	s.cfg = testConfig()
	s.search = new(testutils.MockRecipeSearchGateway)
	s.events = testutils.NewRecordingDispatcher()
	s.factory = testutils.NewRecipeFactory(21)
	s.server = s.newServer(s.cfg)
}

func (s *ServerTestSuite) newServer(cfg *config.Config) *Server {
	db, err := sqlite.SetupDatabase(":memory:", logger.Silent)
	s.Require().NoError(err)
	s.T().Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cache := memory.NewCacheRepository(time.Minute)
	s.T().Cleanup(func() { _ = cache.Close() })

	saved := gormrepo.NewSavedRecipeRepository(db)
	entries := gormrepo.NewMealPlanRepository(db)

	recipes := apprecipe.NewRecipeService(saved, s.search, cache, s.events, apprecipe.Options{SearchCacheTTL: time.Minute}, zap.NewNop())
	mealPlans := appmealplan.NewMealPlanService(entries, saved, s.events, zap.NewNop())

	s.registry = prometheus.NewRegistry()
	s.auth = security.NewAuthService(cfg.Auth)

	srv, err := NewServer(cfg, zap.NewNop(), noop.NewTracerProvider().Tracer("test"),
		monitoring.NewMetricsCollector(s.registry), s.auth, recipes, mealPlans)
	s.Require().NoError(err)
	return srv
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) TestMealPlanLifecycle() {
	ha := testutils.NewHTTPAssertions(s.T())
	dto := s.factory.NewRecipe().WithID(0).WithServings(2).BuildDTO()

	rec := s.do(http.MethodPost, "/api/users/1/recipes", dto)
	ha.StatusCode(rec, http.StatusCreated, rec.Body.String())
	var saved inbound.RecipeDTO
	ha.JSONResponse(rec, &saved)
	s.Require().Positive(saved.RecipeID)

	rec = s.do(http.MethodPost, "/api/users/1/meal-plan", handlers.AddMealRequest{
		RecipeID: saved.RecipeID,
		MealDate: "2024-03-06",
		MealType: "Dinner",
	})
	ha.StatusCode(rec, http.StatusCreated, rec.Body.String())
	var added handlers.AddMealResponse
	ha.JSONResponse(rec, &added)
	s.Require().Positive(added.EntryID)

	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/users/1/meal-plan/%d", added.EntryID), handlers.UpdateStatusRequest{Status: "cooked"})
	ha.StatusCode(rec, http.StatusNoContent, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/users/1/meal-plan?weekStart=2024-03-04", nil)
	ha.StatusCode(rec, http.StatusOK, rec.Body.String())
	var week []inbound.MealPlanEntryDTO
	ha.JSONResponse(rec, &week)
	s.Require().Len(week, 1)
	s.Equal("cooked", week[0].Status)
	s.Equal("2024-03-06", week[0].MealDate)
	s.Equal(dto.Title, week[0].Recipe.Title)

	// another user sees nothing and cannot touch the entry
	rec = s.do(http.MethodGet, "/api/users/2/meal-plan?weekStart=2024-03-04", nil)
	s.JSONEq(`[]`, rec.Body.String())
	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/users/2/meal-plan/%d", added.EntryID), nil)
	ha.ErrorCode(rec, http.StatusNotFound, errors.CodeEntryNotFound)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/users/1/meal-plan/%d", added.EntryID), nil)
	ha.StatusCode(rec, http.StatusNoContent)

	rec = s.do(http.MethodGet, "/api/users/1/meal-plan?weekStart=2024-03-04", nil)
	s.JSONEq(`[]`, rec.Body.String())

	s.Equal([]string{
		recipe.EventRecipeSaved,
		mealplan.EventEntryPlanned,
		mealplan.EventEntryStatusChanged,
		mealplan.EventEntryRemoved,
	}, s.events.Names())
}

func (s *ServerTestSuite) TestPlanningUnsavedRecipeFails() {
	rec := s.do(http.MethodPost, "/api/users/1/meal-plan", handlers.AddMealRequest{
		RecipeID: 999,
		MealDate: "2024-03-06",
		MealType: "Lunch",
	})
	testutils.NewHTTPAssertions(s.T()).ErrorCode(rec, http.StatusNotFound, errors.CodeRecipeNotFound)
}

func (s *ServerTestSuite) TestAdjustServingsAndNutrition() {
	ha := testutils.NewHTTPAssertions(s.T())
	dto := s.factory.NewRecipe().WithServings(2).BuildDTO()

	rec := s.do(http.MethodPost, "/api/servings/adjust", handlers.AdjustServingsRequest{
		NewServings: 6,
		Recipes:     []inbound.RecipeDTO{dto},
	})
	ha.StatusCode(rec, http.StatusOK, rec.Body.String())
	var scaled []inbound.RecipeDTO
	ha.JSONResponse(rec, &scaled)
	s.Require().Len(scaled, 1)
	s.Equal(6, scaled[0].Servings)
	for i, ing := range dto.Ingredients {
		s.InDelta(ing.Quantity*3, scaled[0].Ingredients[i].Quantity, 1e-9)
	}

	rec = s.do(http.MethodPost, "/api/nutrition/analyze", dto)
	ha.StatusCode(rec, http.StatusOK, rec.Body.String())
	var lines []string
	ha.JSONResponse(rec, &lines)
	s.Len(lines, 6)
	s.True(strings.HasPrefix(lines[0], "Calories: "), lines[0])
}

func (s *ServerTestSuite) TestSearchIsCached() {
	hit := s.factory.NewRecipe().Build()
	s.search.On("Search", mock.Anything, mock.Anything).Return([]recipe.Recipe{hit}, nil).Once()

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodGet, "/api/recipes/search?ingredients=egg,flour", nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var results []inbound.RecipeDTO
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &results))
		s.Len(results, 1)
	}
	s.search.AssertExpectations(s.T())
}

func (s *ServerTestSuite) TestUnknownRouteAndHeaders() {
	rec := s.do(http.MethodGet, "/api/nope", nil, "X-Request-ID", "req-123")

	ha := testutils.NewHTTPAssertions(s.T())
	details := ha.ErrorCode(rec, http.StatusNotFound, errors.CodeNotFound)
	s.Equal("req-123", details.RequestID)
	ha.Header(rec, "X-Request-ID", "req-123")
	ha.Header(rec, "X-Content-Type-Options", "nosniff")
	ha.Header(rec, "X-Frame-Options", "DENY")
}

func (s *ServerTestSuite) TestCORSPreflight() {
	rec := s.do(http.MethodOptions, "/api/servings/adjust", nil, "Origin", "http://localhost:3000")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(http.MethodOptions, "/api/servings/adjust", nil, "Origin", "http://evil.example")
	s.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *ServerTestSuite) TestAuthRequiresMatchingSubject() {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	s.server = s.newServer(cfg)
	ha := testutils.NewHTTPAssertions(s.T())

	rec := s.do(http.MethodGet, "/api/users/3/recipes", nil)
	ha.ErrorCode(rec, http.StatusUnauthorized, errors.CodeUnauthorized)

	rec = s.do(http.MethodGet, "/api/users/3/recipes", nil, "Authorization", "Bearer not-a-token")
	ha.ErrorCode(rec, http.StatusUnauthorized, errors.CodeUnauthorized)

	other, err := s.auth.GenerateAccessToken(4, time.Minute)
	s.Require().NoError(err)
	rec = s.do(http.MethodGet, "/api/users/3/recipes", nil, "Authorization", "Bearer "+other)
	ha.ErrorCode(rec, http.StatusForbidden, errors.CodeForbidden)

	own, err := s.auth.GenerateAccessToken(3, time.Minute)
	s.Require().NoError(err)
	rec = s.do(http.MethodGet, "/api/users/3/recipes", nil, "Authorization", "Bearer "+own)
	ha.StatusCode(rec, http.StatusOK, rec.Body.String())

	// stateless routes stay public
	rec = s.do(http.MethodPost, "/api/nutrition/analyze", s.factory.NewRecipe().BuildDTO())
	ha.StatusCode(rec, http.StatusOK)
}

func (s *ServerTestSuite) TestRateLimit() {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enable: true, RequestsPerMin: 1, BurstSize: 1}
	s.server = s.newServer(cfg)

	rec := s.do(http.MethodGet, "/api/users/1/recipes", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/1/recipes", nil)
	testutils.NewHTTPAssertions(s.T()).ErrorCode(rec, http.StatusTooManyRequests, errors.CodeTooManyRequests)
	s.Equal("60", rec.Header().Get("Retry-After"))
}

func (s *ServerTestSuite) TestRequestsAreCounted() {
	s.do(http.MethodGet, "/api/users/1/recipes", nil)
	s.do(http.MethodGet, "/api/users/abc/recipes", nil)

	families, err := s.registry.Gather()
	s.Require().NoError(err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "recipewiz_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["path"]+" "+labels["status_code"]] += m.GetCounter().GetValue()
		}
	}

	s.Equal(1.0, counts["/api/users/:userId/recipes 200"])
	s.Equal(1.0, counts["/api/users/:userId/recipes 400"])
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}

	_, err := NewServer(cfg, zap.NewNop(), noop.NewTracerProvider().Tracer("test"), nil,
		security.NewAuthService(cfg.Auth), new(testutils.MockRecipeService), new(testutils.MockMealPlanService))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted proxies")
}
