package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
)

// BusinessMetrics counts what users do with recipes and their meal plan.
// It is fed by domain events.
type BusinessMetrics struct {
	servingsAdjustments metric.Int64Counter
	recipesScaled       metric.Int64Counter
	recipesSaved        metric.Int64Counter
	recipesUnsaved      metric.Int64Counter
	mealsPlanned        metric.Int64Counter
	mealStatusChanges   metric.Int64Counter
	mealsRemoved        metric.Int64Counter

	targetServings metric.Float64Histogram
}

// NewBusinessMetrics creates the business instruments on the provider's meter
func NewBusinessMetrics(provider *OpenTelemetryProvider) (*BusinessMetrics, error) {
	bm := &BusinessMetrics{}

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&bm.servingsAdjustments, "recipewiz_servings_adjustments", "Serving adjustment requests", "{request}"},
		{&bm.recipesScaled, "recipewiz_recipes_scaled", "Recipes rescaled to a new serving count", "{recipe}"},
		{&bm.recipesSaved, "recipewiz_recipes_saved", "Recipes saved by users", "{recipe}"},
		{&bm.recipesUnsaved, "recipewiz_recipes_unsaved", "Saved recipes removed by users", "{recipe}"},
		{&bm.mealsPlanned, "recipewiz_meals_planned", "Meals added to a calendar", "{meal}"},
		{&bm.mealStatusChanges, "recipewiz_meals_status_changes", "Meal status updates", "{meal}"},
		{&bm.mealsRemoved, "recipewiz_meals_removed", "Meals removed from a calendar", "{meal}"},
	}

	for _, c := range counters {
		counter, err := provider.CreateCounter(c.name, c.description, c.unit)
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	var err error
	bm.targetServings, err = provider.CreateHistogram(
		"recipewiz_servings_target",
		"Requested serving counts",
		"{serving}",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}

	return bm, nil
}

// HandleEvent records a domain event. Unknown events are ignored.
func (bm *BusinessMetrics) HandleEvent(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case recipe.ServingsAdjustedEvent:
		bm.servingsAdjustments.Add(ctx, 1)
		bm.recipesScaled.Add(ctx, int64(e.RecipeCount))
		bm.targetServings.Record(ctx, float64(e.NewServings))
	case recipe.RecipeSavedEvent:
		bm.recipesSaved.Add(ctx, 1)
	case recipe.RecipeUnsavedEvent:
		bm.recipesUnsaved.Add(ctx, 1)
	case mealplan.EntryPlannedEvent:
		bm.mealsPlanned.Add(ctx, 1)
	case mealplan.EntryStatusChangedEvent:
		status := "other"
		if e.Status.IsKnown() {
			status = string(e.Status)
		}
		bm.mealStatusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	case mealplan.EntryRemovedEvent:
		bm.mealsRemoved.Add(ctx, 1)
	}
	return nil
}

// EventNames lists the events HandleEvent understands
func (bm *BusinessMetrics) EventNames() []string {
	return []string{
		recipe.EventServingsAdjusted,
		recipe.EventRecipeSaved,
		recipe.EventRecipeUnsaved,
		mealplan.EventEntryPlanned,
		mealplan.EventEntryStatusChanged,
		mealplan.EventEntryRemoved,
	}
}
