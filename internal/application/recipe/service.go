// Package recipe provides the application layer for recipe use cases:
// serving adjustment, nutrition analysis, external search and the user's
// saved recipes. It implements inbound.RecipeService.
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/recipewiz/backend/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/recipewiz/backend/internal/application/recipe"

// Options tunes the recipe service
type Options struct {
	// SearchCacheTTL is how long external search results are cached;
	// zero disables caching.
	SearchCacheTTL time.Duration

	// MaxParallelScaling bounds the number of workers scaling a batch
	// adjustment; zero means GOMAXPROCS.
	MaxParallelScaling int
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	savedRecipes outbound.SavedRecipeStore
	search       outbound.RecipeSearchGateway
	cache        outbound.CacheRepository
	events       shared.EventDispatcher
	opts         Options
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	savedRecipes outbound.SavedRecipeStore,
	search outbound.RecipeSearchGateway,
	cache outbound.CacheRepository,
	events shared.EventDispatcher,
	opts Options,
	logger *zap.Logger,
) inbound.RecipeService {
	if opts.MaxParallelScaling <= 0 {
		opts.MaxParallelScaling = runtime.GOMAXPROCS(0)
	}
	return &RecipeService{
		savedRecipes: savedRecipes,
		search:       search,
		cache:        cache,
		events:       events,
		opts:         opts,
		tracer:       otel.Tracer(tracerName),
		logger:       logger.Named("recipe-service"),
	}
}

// AdjustServings rescales every recipe of the batch to cmd.NewServings.
// The whole batch is validated before any recipe is scaled; the result
// has the same length and order as the input and is not persisted.
func (s *RecipeService) AdjustServings(ctx context.Context, cmd inbound.AdjustServingsCommand) ([]inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.AdjustServings", trace.WithAttributes(
		attribute.Int("recipe.new_servings", cmd.NewServings),
		attribute.Int("recipe.batch_size", len(cmd.Recipes)),
	))
	defer span.End()

	const op = "adjust servings"

	if cmd.NewServings < 1 {
		return nil, errors.NewValidationError("newServings must be at least 1").WithOp(op)
	}

	recipes := make([]recipe.Recipe, len(cmd.Recipes))
	for i, dto := range cmd.Recipes {
		r, err := dto.ToDomain()
		if err != nil {
			return nil, validationError(op, fmt.Errorf("recipe at position %d: %w", i, err))
		}
		recipes[i] = r
	}

	if err := recipe.ValidateBatch(recipes, cmd.NewServings); err != nil {
		return nil, validationError(op, err)
	}

	// Each worker scales one contiguous slice of the batch in place.
	scaled := make([]recipe.Recipe, len(recipes))
	workers := s.opts.MaxParallelScaling
	chunk := (len(recipes) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(recipes); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(recipes))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := recipe.ScaleBatch(recipes[lo:hi], cmd.NewServings)
			if err != nil {
				return err
			}
			copy(scaled[lo:hi], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "failed to adjust servings").WithOp(op)
	}

	s.logger.Debug("Serving adjustment computed",
		zap.Int("recipes", len(scaled)),
		zap.Int("new_servings", cmd.NewServings),
	)

	s.dispatch(ctx, recipe.ServingsAdjustedEvent{
		RecipeCount: len(scaled),
		NewServings: cmd.NewServings,
		AdjustedAt:  time.Now(),
	})

	return inbound.NewRecipeDTOs(scaled), nil
}

// AnalyzeNutrition summarizes the recipe's nutrition as six facts. A
// recipe without nutrition yields six zero facts.
func (s *RecipeService) AnalyzeNutrition(ctx context.Context, dto inbound.RecipeDTO) (*inbound.NutritionAnalysis, error) {
	_, span := s.tracer.Start(ctx, "RecipeService.AnalyzeNutrition", trace.WithAttributes(
		attribute.Int64("recipe.id", dto.RecipeID),
		attribute.Bool("recipe.has_nutrition", dto.Nutrition != nil),
	))
	defer span.End()

	var nutrition *recipe.Nutrition
	if n := dto.Nutrition; n != nil {
		nutrition = recipe.NewNutrition(n.Calories, n.Protein, n.Fat, n.Carbohydrates, n.Fiber, n.Sugar)
	}

	facts := recipe.Summarize(nutrition)
	analysis := &inbound.NutritionAnalysis{
		RecipeID: dto.RecipeID,
		Facts:    make([]inbound.NutrientFactDTO, len(facts)),
	}
	for i, f := range facts {
		analysis.Facts[i] = inbound.NutrientFactDTO{
			Nutrient: f.Key,
			Label:    f.Label,
			Value:    f.Value,
			Unit:     f.Unit,
			Text:     f.String(),
		}
	}

	return analysis, nil
}

// SearchRecipes finds recipes in the external provider by ingredients
func (s *RecipeService) SearchRecipes(ctx context.Context, query inbound.IngredientSearchQuery) ([]inbound.RecipeDTO, error) {
	const op = "search recipes"

	ingredients := cleanTerms(query.Ingredients)
	if len(ingredients) == 0 {
		return nil, errors.NewValidationError("at least one ingredient is required").WithOp(op)
	}

	return s.searchCached(ctx, op, outbound.SearchCriteria{
		Query:       strings.Join(ingredients, " "),
		Ingredients: ingredients,
	})
}

// SearchWithRestrictions finds recipes by food name narrowed by diet,
// health and cuisine labels
func (s *RecipeService) SearchWithRestrictions(ctx context.Context, query inbound.RestrictionQuery) ([]inbound.RecipeDTO, error) {
	const op = "search recipes with restrictions"

	foodName := strings.TrimSpace(query.FoodName)
	if foodName == "" {
		return nil, errors.NewValidationError("foodName is required").WithOp(op)
	}

	return s.searchCached(ctx, op, outbound.SearchCriteria{
		Query:        foodName,
		DietLabels:   cleanTerms(query.DietLabels),
		HealthLabels: cleanTerms(query.HealthLabels),
		CuisineTypes: cleanTerms(query.CuisineTypes),
	})
}

func (s *RecipeService) searchCached(ctx context.Context, op string, criteria outbound.SearchCriteria) ([]inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Search", trace.WithAttributes(
		attribute.String("search.query", criteria.Query),
	))
	defer span.End()

	key := searchCacheKey(criteria)
	if cached, ok := s.cachedSearch(ctx, key); ok {
		span.SetAttributes(attribute.Bool("search.cache_hit", true))
		return cached, nil
	}

	results, err := s.search.Search(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithOp(op)
		}
		return nil, errors.NewExternalServiceError("recipe search provider", err).WithOp(op)
	}

	dtos := inbound.NewRecipeDTOs(results)
	s.storeSearch(ctx, key, dtos)

	s.logger.Debug("External recipe search completed",
		zap.String("query", criteria.Query),
		zap.Int("results", len(dtos)),
	)

	return dtos, nil
}

func (s *RecipeService) cachedSearch(ctx context.Context, key string) ([]inbound.RecipeDTO, bool) {
	if s.cache == nil || s.opts.SearchCacheTTL <= 0 {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}

	var dtos []inbound.RecipeDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		s.logger.Warn("Discarding unreadable cached search", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return dtos, true
}

func (s *RecipeService) storeSearch(ctx context.Context, key string, dtos []inbound.RecipeDTO) {
	if s.cache == nil || s.opts.SearchCacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.SearchCacheTTL); err != nil {
		s.logger.Warn("Failed to cache search results", zap.String("key", key), zap.Error(err))
	}
}

// SaveRecipe adds or replaces a recipe in the user's saved recipes
func (s *RecipeService) SaveRecipe(ctx context.Context, cmd inbound.SaveRecipeCommand) (*inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.SaveRecipe", trace.WithAttributes(
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int64("recipe.id", cmd.Recipe.RecipeID),
	))
	defer span.End()

	const op = "save recipe"

	if cmd.UserID <= 0 {
		return nil, errors.NewValidationError("user id must be positive").WithOp(op)
	}

	r, err := cmd.Recipe.ToDomain()
	if err != nil {
		return nil, validationError(op, err)
	}

	saved, err := s.savedRecipes.SaveRecipe(ctx, cmd.UserID, r)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(op, err)
	}

	s.logger.Info("Recipe saved",
		zap.Int64("user_id", cmd.UserID),
		zap.Int64("recipe_id", saved.ID()),
	)

	s.dispatch(ctx, recipe.RecipeSavedEvent{
		UserID:   cmd.UserID,
		RecipeID: saved.ID(),
		Title:    saved.Title(),
		SavedAt:  time.Now(),
	})

	dto := inbound.NewRecipeDTO(saved)
	return &dto, nil
}

// GetSavedRecipes lists the user's saved recipes in save order
func (s *RecipeService) GetSavedRecipes(ctx context.Context, userID int64) ([]inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.GetSavedRecipes", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	return listSavedRecipes(ctx, s.savedRecipes, userID)
}

// RemoveSavedRecipe deletes a recipe from the user's saved recipes.
// Meal plan entries keep their own snapshot and are unaffected.
func (s *RecipeService) RemoveSavedRecipe(ctx context.Context, userID, recipeID int64) error {
	ctx, span := s.tracer.Start(ctx, "RecipeService.RemoveSavedRecipe", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("recipe.id", recipeID),
	))
	defer span.End()

	const op = "remove saved recipe"

	if err := s.savedRecipes.RemoveRecipe(ctx, userID, recipeID); err != nil {
		return storageError(op, err)
	}

	s.logger.Info("Saved recipe removed",
		zap.Int64("user_id", userID),
		zap.Int64("recipe_id", recipeID),
	)

	s.dispatch(ctx, recipe.RecipeUnsavedEvent{
		UserID:    userID,
		RecipeID:  recipeID,
		RemovedAt: time.Now(),
	})

	return nil
}

// dispatch publishes events; handler failures are logged, never returned
func (s *RecipeService) dispatch(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, events...); err != nil {
		s.logger.Error("Failed to dispatch events", zap.Error(err))
	}
}

func listSavedRecipes(ctx context.Context, store outbound.SavedRecipeStore, userID int64) ([]inbound.RecipeDTO, error) {
	const op = "get saved recipes"

	if userID <= 0 {
		return nil, errors.NewValidationError("user id must be positive").WithOp(op)
	}

	recipes, err := store.GetSavedRecipes(ctx, userID)
	if err != nil {
		return nil, storageError(op, err)
	}
	return inbound.NewRecipeDTOs(recipes), nil
}

func validationError(op string, err error) error {
	return errors.NewValidationError(err.Error()).WithCause(err).WithOp(op)
}

// storageError tags store failures with the use case; errors that are
// already classified keep their code.
func storageError(op string, err error) error {
	if appErr, ok := errors.As(err); ok {
		return appErr.WithOp(op)
	}
	return errors.NewStorageError(op, err)
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func searchCacheKey(c outbound.SearchCriteria) string {
	norm := func(terms []string) string {
		return strings.ToLower(strings.Join(terms, ","))
	}
	return fmt.Sprintf("recipes:search:q=%s|i=%s|d=%s|h=%s|c=%s",
		strings.ToLower(c.Query),
		norm(c.Ingredients),
		norm(c.DietLabels),
		norm(c.HealthLabels),
		norm(c.CuisineTypes),
	)
}
