// Package mealplan provides the application layer for the meal-planning
// calendar. It implements inbound.MealPlanService.
package mealplan

import (
	"context"
	"time"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/shared"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/recipewiz/backend/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/recipewiz/backend/internal/application/mealplan"

// MealPlanService implements the calendar use cases
type MealPlanService struct {
	entries      outbound.MealPlanStore
	savedRecipes outbound.SavedRecipeStore
	events       shared.EventDispatcher
	tracer       trace.Tracer
	logger       *zap.Logger
}

// NewMealPlanService creates a new meal plan service
func NewMealPlanService(
	entries outbound.MealPlanStore,
	savedRecipes outbound.SavedRecipeStore,
	events shared.EventDispatcher,
	logger *zap.Logger,
) inbound.MealPlanService {
	return &MealPlanService{
		entries:      entries,
		savedRecipes: savedRecipes,
		events:       events,
		tracer:       otel.Tracer(tracerName),
		logger:       logger.Named("mealplan-service"),
	}
}

// AddMeal plans one of the user's saved recipes on a day. The recipe is
// resolved from the saved recipes only; if it is not there nothing is
// written and a not-found error is returned.
func (s *MealPlanService) AddMeal(ctx context.Context, cmd inbound.AddMealCommand) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.AddMeal", trace.WithAttributes(
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int64("recipe.id", cmd.RecipeID),
		attribute.String("meal.date", cmd.MealDate),
		attribute.String("meal.type", cmd.MealType),
	))
	defer span.End()

	const op = "add meal"

	if cmd.UserID <= 0 {
		return 0, validationError(op, mealplan.ErrInvalidUser)
	}
	date, err := mealplan.ParseDate(cmd.MealDate)
	if err != nil {
		return 0, validationError(op, err)
	}

	snapshot, err := s.savedRecipes.GetSavedRecipe(ctx, cmd.UserID, cmd.RecipeID)
	if err != nil {
		return 0, s.fail(span, storageError("get saved recipe", err).WithOp(op))
	}
	if snapshot == nil {
		s.logger.Warn("Recipe not in saved recipes",
			zap.Int64("user_id", cmd.UserID),
			zap.Int64("recipe_id", cmd.RecipeID),
		)
		return 0, errors.NewRecipeNotFoundError(cmd.UserID, cmd.RecipeID).WithOp(op)
	}

	entry, err := mealplan.NewEntry(cmd.UserID, *snapshot, date, cmd.MealType)
	if err != nil {
		return 0, validationError(op, err)
	}

	if err := s.entries.Insert(ctx, entry); err != nil {
		return 0, s.fail(span, storageError("insert meal plan entry", err).WithOp(op))
	}

	s.logger.Info("Meal planned",
		zap.Int64("user_id", cmd.UserID),
		zap.Int64("entry_id", entry.ID()),
		zap.Int64("recipe_id", cmd.RecipeID),
		zap.String("meal_date", date.String()),
		zap.String("meal_type", entry.MealType()),
	)

	s.dispatch(ctx, entry.Events()...)

	return entry.ID(), nil
}

// RemoveMeal deletes one of the user's entries. Entries of other users
// are reported as not found.
func (s *MealPlanService) RemoveMeal(ctx context.Context, userID, entryID int64) error {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.RemoveMeal", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("entry.id", entryID),
	))
	defer span.End()

	if err := s.entries.Delete(ctx, userID, entryID); err != nil {
		return s.fail(span, storageError("remove meal", err))
	}

	s.logger.Info("Meal removed",
		zap.Int64("user_id", userID),
		zap.Int64("entry_id", entryID),
	)

	s.dispatch(ctx, mealplan.EntryRemovedEvent{
		EntryID:   entryID,
		UserID:    userID,
		RemovedAt: time.Now(),
	})

	return nil
}

// UpdateMealStatus sets the status label of one of the user's entries.
// Any status may follow any other.
func (s *MealPlanService) UpdateMealStatus(ctx context.Context, cmd inbound.UpdateMealStatusCommand) error {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.UpdateMealStatus", trace.WithAttributes(
		attribute.Int64("user.id", cmd.UserID),
		attribute.Int64("entry.id", cmd.EntryID),
		attribute.String("entry.status", cmd.Status),
	))
	defer span.End()

	const op = "update meal status"

	status, err := mealplan.ParseStatus(cmd.Status)
	if err != nil {
		return validationError(op, err)
	}
	if !status.IsKnown() {
		s.logger.Debug("Custom status label", zap.String("status", string(status)))
	}

	if err := s.entries.UpdateStatus(ctx, cmd.UserID, cmd.EntryID, status); err != nil {
		return s.fail(span, storageError(op, err))
	}

	s.dispatch(ctx, mealplan.EntryStatusChangedEvent{
		EntryID:   cmd.EntryID,
		UserID:    cmd.UserID,
		Status:    status,
		ChangedAt: time.Now(),
	})

	return nil
}

// GetWeek returns the user's entries from WeekStart (inclusive) to seven
// days later (exclusive), ordered by date then insertion order.
func (s *MealPlanService) GetWeek(ctx context.Context, query inbound.WeekQuery) ([]inbound.MealPlanEntryDTO, error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.GetWeek", trace.WithAttributes(
		attribute.Int64("user.id", query.UserID),
		attribute.String("week.start", query.WeekStart),
	))
	defer span.End()

	const op = "get week"

	start, err := mealplan.ParseDate(query.WeekStart)
	if err != nil {
		return nil, validationError(op, err)
	}
	week := mealplan.WeekStarting(start)

	entries, err := s.entries.FindByDateRange(ctx, query.UserID, week.Start, week.End)
	if err != nil {
		return nil, s.fail(span, storageError(op, err))
	}

	dtos := make([]inbound.MealPlanEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = inbound.NewMealPlanEntryDTO(e)
	}

	span.SetAttributes(attribute.Int("week.entries", len(dtos)))
	return dtos, nil
}

// GetSavedRecipes lists the recipes the user can plan
func (s *MealPlanService) GetSavedRecipes(ctx context.Context, userID int64) ([]inbound.RecipeDTO, error) {
	ctx, span := s.tracer.Start(ctx, "MealPlanService.GetSavedRecipes", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	recipes, err := s.savedRecipes.GetSavedRecipes(ctx, userID)
	if err != nil {
		return nil, s.fail(span, storageError("get saved recipes", err))
	}
	return inbound.NewRecipeDTOs(recipes), nil
}

func (s *MealPlanService) fail(span trace.Span, err *errors.AppError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !err.IsClientError() {
		s.logger.Error("Meal plan operation failed", zap.String("op", err.Op), zap.Error(err))
	}
	return err
}

func (s *MealPlanService) dispatch(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Dispatch(ctx, events...); err != nil {
		s.logger.Error("Failed to dispatch events", zap.Error(err))
	}
}

func validationError(op string, err error) error {
	return errors.NewValidationError(err.Error()).WithCause(err).WithOp(op)
}

func storageError(op string, err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr.WithOp(op)
	}
	return errors.NewStorageError(op, err)
}
