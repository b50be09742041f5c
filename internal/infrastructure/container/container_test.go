package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/recipewiz/backend/internal/infrastructure/config"
	"github.com/recipewiz/backend/internal/infrastructure/http/opsserver"
	"github.com/recipewiz/backend/internal/infrastructure/http/server"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/healthcheck"
)

func inMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvPrefix+"_DATABASE_PATH", ":memory:")
	t.Setenv(config.EnvPrefix+"_APP_LOG_LEVEL", "error")
}

func TestModule_Validates(t *testing.T) {
	inMemoryEnv(t)

	err := fx.ValidateApp(
		fx.Supply(ConfigPath("")),
		Module,
	)
	require.NoError(t, err)
}

func TestModule_BuildsSeededApplication(t *testing.T) {
	inMemoryEnv(t)

	var (
		recipes   inbound.RecipeService
		mealPlans inbound.MealPlanService
		health    *healthcheck.HealthCheck
		api       *server.Server
		ops       *opsserver.Server
		db        *gorm.DB
	)

	app := fx.New(
		fx.Supply(ConfigPath("")),
		Module,
		fx.Populate(&recipes, &mealPlans, &health, &api, &ops, &db),
	)
	require.NoError(t, app.Err())
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	assert.Equal(t, "0.0.0.0:8080", api.Addr())
	assert.Equal(t, "0.0.0.0:9090", ops.Addr())

	ctx := context.Background()

	saved, err := recipes.GetSavedRecipes(ctx, demoUserID)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Classic Pancakes", saved[0].Title)

	entryID, err := mealPlans.AddMeal(ctx, inbound.AddMealCommand{
		UserID:   demoUserID,
		RecipeID: saved[1].RecipeID,
		MealDate: "2024-03-05",
		MealType: "dinner",
	})
	require.NoError(t, err)
	assert.NotZero(t, entryID)

	week, err := mealPlans.GetWeek(ctx, inbound.WeekQuery{UserID: demoUserID, WeekStart: "2024-03-04"})
	require.NoError(t, err)
	assert.Len(t, week, 1)

	// No search credentials in the default configuration.
	resp := health.Check(ctx)
	assert.Equal(t, healthcheck.StatusDegraded, resp.Status)
}

func TestGormLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want gormLogger.LogLevel
	}{
		{"silent", gormLogger.Silent},
		{"ERROR", gormLogger.Error},
		{"info", gormLogger.Info},
		{"debug", gormLogger.Info},
		{"warn", gormLogger.Warn},
		{"", gormLogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, gormLogLevel(tt.in))
		})
	}
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}

	_, err := openDatabase(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
