// Package server provides the JSON API HTTP server
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/http/handlers"
	"github.com/recipewiz/backend/internal/infrastructure/http/middleware"
	"github.com/recipewiz/backend/internal/infrastructure/monitoring"
	"github.com/recipewiz/backend/internal/infrastructure/security"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/errors"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	server     *http.Server
	middleware *middleware.Middleware
	metrics    *monitoring.MetricsCollector
	auth       *security.AuthService
	recipes    *handlers.RecipeHandler
	mealPlans  *handlers.MealPlanHandler
}

// NewServer creates a new HTTP server instance. metrics may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tracer trace.Tracer,
	metrics *monitoring.MetricsCollector,
	auth *security.AuthService,
	recipeService inbound.RecipeService,
	mealPlanService inbound.MealPlanService,
) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	s := &Server{
		config:     cfg,
		logger:     logger.Named("http-server"),
		middleware: middleware.New(cfg, tracer, logger),
		metrics:    metrics,
		auth:       auth,
		recipes:    handlers.NewRecipeHandler(recipeService, logger),
		mealPlans:  handlers.NewMealPlanHandler(mealPlanService, logger),
	}

	engine, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.engine = engine

	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        s.engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s, nil
}

// setupRouter configures the gin engine with middleware and routes
func (s *Server) setupRouter() (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	mw := s.middleware

	// Global middleware. ErrorHandler is innermost so the logger and
	// metrics see the rendered status.
	r.Use(mw.RequestID())
	r.Use(mw.Recovery())
	r.Use(mw.Security())
	r.Use(mw.CORS())
	r.Use(mw.Tracing())
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware())
	}
	r.Use(mw.Logger())
	r.Use(mw.RateLimit())
	r.Use(mw.Timeout(s.config.Server.RequestTimeout))
	r.Use(mw.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(errors.NewNotFoundError("Route"))
	})

	api := r.Group("/api")
	s.setupAPIRoutes(api)

	return r, nil
}

// setupAPIRoutes configures REST API routes
func (s *Server) setupAPIRoutes(api *gin.RouterGroup) {
	// Stateless transformations and search
	api.POST("/servings/adjust", s.recipes.AdjustServings)
	api.POST("/nutrition/analyze", s.recipes.AnalyzeNutrition)
	api.GET("/recipes/search", s.recipes.SearchRecipes)
	api.POST("/recipes/search/restricted", s.recipes.SearchWithRestrictions)

	// Per-user resources
	users := api.Group("/users/:userId", s.middleware.RequireUser(s.auth))
	{
		users.GET("/recipes", s.recipes.GetSavedRecipes)
		users.POST("/recipes", s.recipes.SaveRecipe)
		users.DELETE("/recipes/:recipeId", s.recipes.RemoveSavedRecipe)

		users.GET("/meal-plan", s.mealPlans.GetWeek)
		users.POST("/meal-plan", s.mealPlans.AddMeal)
		users.GET("/meal-plan/saved-recipes", s.mealPlans.GetSavedRecipes)
		users.PATCH("/meal-plan/:entryId", s.mealPlans.UpdateMealStatus)
		users.DELETE("/meal-plan/:entryId", s.mealPlans.RemoveMeal)
	}
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server and blocks until it stops.
// http.ErrServerClosed is returned after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
