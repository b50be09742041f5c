package events

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
)

func TestDispatcher_RoutesByEventName(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t))

	var got []string
	d.Register(recipe.EventRecipeSaved, func(_ context.Context, e shared.DomainEvent) error {
		got = append(got, "saved:"+e.EventName())
		return nil
	})
	d.Register(mealplan.EventEntryRemoved, func(_ context.Context, e shared.DomainEvent) error {
		got = append(got, "removed:"+e.EventName())
		return nil
	})

	err := d.Dispatch(context.Background(),
		recipe.RecipeSavedEvent{UserID: 1, RecipeID: 2, SavedAt: time.Now()},
		mealplan.EntryRemovedEvent{EntryID: 3, UserID: 1, RemovedAt: time.Now()},
		recipe.RecipeUnsavedEvent{UserID: 1, RecipeID: 2, RemovedAt: time.Now()},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"saved:" + recipe.EventRecipeSaved,
		"removed:" + mealplan.EventEntryRemoved,
	}, got)
}

func TestDispatcher_HandlerFailureDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := NewDispatcher(zap.New(core))

	calls := 0
	d.Register(recipe.EventRecipeSaved, func(context.Context, shared.DomainEvent) error {
		return stderrors.New("boom")
	})
	d.Register(recipe.EventRecipeSaved, func(context.Context, shared.DomainEvent) error {
		calls++
		return nil
	})

	err := d.Dispatch(context.Background(), recipe.RecipeSavedEvent{SavedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, logs.FilterMessage("Failed to handle event").Len())
}

func TestDispatcher_RegisterAll(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t))

	var names []string
	d.RegisterAll([]string{mealplan.EventEntryPlanned, mealplan.EventEntryStatusChanged},
		func(_ context.Context, e shared.DomainEvent) error {
			names = append(names, e.EventName())
			return nil
		})

	require.NoError(t, d.Dispatch(context.Background(),
		mealplan.EntryPlannedEvent{EntryID: 1, PlannedAt: time.Now()},
		mealplan.EntryStatusChangedEvent{EntryID: 1, Status: mealplan.StatusSkipped, ChangedAt: time.Now()},
	))
	assert.Equal(t, []string{mealplan.EventEntryPlanned, mealplan.EventEntryStatusChanged}, names)
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := LogHandler(zap.New(core))

	require.NoError(t, handler(context.Background(), mealplan.EntryPlannedEvent{
		EntryID:   9,
		UserID:    1,
		MealType:  "Lunch",
		PlannedAt: time.Now(),
	}))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, mealplan.EventEntryPlanned, entries[0].ContextMap()["event"])
}
