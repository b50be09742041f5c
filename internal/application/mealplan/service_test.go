package mealplan_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	app "github.com/recipewiz/backend/internal/application/mealplan"
	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/ports/inbound"
	"github.com/recipewiz/backend/pkg/errors"
	"github.com/recipewiz/backend/test/testutils"
)

type MealPlanServiceTestSuite struct {
	suite.Suite
	entries *testutils.MockMealPlanStore
	saved   *testutils.MockSavedRecipeStore
	events  *testutils.RecordingDispatcher
	recipes *testutils.RecipeFactory
	service inbound.MealPlanService
	ctx     context.Context
}

func (s *MealPlanServiceTestSuite) SetupTest() {
	s.entries = new(testutils.MockMealPlanStore)
	s.saved = new(testutils.MockSavedRecipeStore)
	s.events = testutils.NewRecordingDispatcher()
	s.recipes = testutils.NewRecipeFactory(33)
	s.ctx = context.Background()
	s.service = app.NewMealPlanService(s.entries, s.saved, s.events, zaptest.NewLogger(s.T()))
}

func (s *MealPlanServiceTestSuite) TearDownTest() {
	s.entries.AssertExpectations(s.T())
	s.saved.AssertExpectations(s.T())
}

func (s *MealPlanServiceTestSuite) TestAddMeal_SnapshotsSavedRecipe() {
	r := s.recipes.NewRecipe().WithID(10).Build()
	s.saved.On("GetSavedRecipe", mock.Anything, int64(1), int64(10)).Return(&r, nil).Once()
	s.entries.On("Insert", mock.Anything, mock.MatchedBy(func(e *mealplan.Entry) bool {
		return e.UserID() == 1 &&
			e.Recipe().ID() == 10 &&
			e.Recipe().Title() == r.Title() &&
			e.Date().String() == "2024-03-04" &&
			e.MealType() == "Dinner" &&
			e.Status() == mealplan.StatusPlanned
	})).Return(nil, int64(501)).Once()

	id, err := s.service.AddMeal(s.ctx, inbound.AddMealCommand{
		UserID:   1,
		RecipeID: 10,
		MealDate: "2024-03-04",
		MealType: "Dinner",
	})
	s.Require().NoError(err)
	s.Equal(int64(501), id)
	s.Equal([]string{mealplan.EventEntryPlanned}, s.events.Names())
}

func (s *MealPlanServiceTestSuite) TestAddMeal_UnsavedRecipeWritesNothing() {
	s.saved.On("GetSavedRecipe", mock.Anything, int64(1), int64(10)).Return(nil, nil).Once()

	_, err := s.service.AddMeal(s.ctx, inbound.AddMealCommand{
		UserID:   1,
		RecipeID: 10,
		MealDate: "2024-03-04",
		MealType: "Lunch",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
	s.Equal(errors.CodeRecipeNotFound, errors.GetCode(err))
	s.entries.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
	s.Empty(s.events.Events())
}

func (s *MealPlanServiceTestSuite) TestAddMeal_Validation() {
	cases := map[string]inbound.AddMealCommand{
		"bad date":     {UserID: 1, RecipeID: 1, MealDate: "04/03/2024", MealType: "Lunch"},
		"missing date": {UserID: 1, RecipeID: 1, MealType: "Lunch"},
		"bad user":     {UserID: 0, RecipeID: 1, MealDate: "2024-03-04", MealType: "Lunch"},
	}

	for name, cmd := range cases {
		s.Run(name, func() {
			_, err := s.service.AddMeal(s.ctx, cmd)
			s.True(errors.IsValidation(err), err)
		})
	}
}

func (s *MealPlanServiceTestSuite) TestAddMeal_BlankMealType() {
	r := s.recipes.NewRecipe().WithID(10).Build()
	s.saved.On("GetSavedRecipe", mock.Anything, int64(1), int64(10)).Return(&r, nil).Once()

	_, err := s.service.AddMeal(s.ctx, inbound.AddMealCommand{
		UserID:   1,
		RecipeID: 10,
		MealDate: "2024-03-04",
		MealType: "  ",
	})
	s.True(errors.IsValidation(err))
}

func (s *MealPlanServiceTestSuite) TestAddMeal_StorageFailure() {
	r := s.recipes.NewRecipe().WithID(10).Build()
	s.saved.On("GetSavedRecipe", mock.Anything, int64(1), int64(10)).Return(&r, nil).Once()
	s.entries.On("Insert", mock.Anything, mock.Anything).Return(stderrors.New("database is locked")).Once()

	_, err := s.service.AddMeal(s.ctx, inbound.AddMealCommand{
		UserID:   1,
		RecipeID: 10,
		MealDate: "2024-03-04",
		MealType: "Lunch",
	})
	s.True(errors.IsStorage(err))
	appErr, ok := errors.As(err)
	s.Require().True(ok)
	s.Equal("add meal: insert meal plan entry", appErr.Op)
	s.Empty(s.events.Events())
}

func (s *MealPlanServiceTestSuite) TestAddMeal_StoreTaggedFailureKeepsBothOps() {
	r := s.recipes.NewRecipe().WithID(10).Build()
	cause := stderrors.New("connection reset")
	s.saved.On("GetSavedRecipe", mock.Anything, int64(1), int64(10)).Return(&r, nil).Once()
	s.entries.On("Insert", mock.Anything, mock.Anything).
		Return(errors.NewStorageError("insert meal plan entry", cause)).Once()

	_, err := s.service.AddMeal(s.ctx, inbound.AddMealCommand{
		UserID:   1,
		RecipeID: 10,
		MealDate: "2024-03-04",
		MealType: "Lunch",
	})
	appErr, ok := errors.As(err)
	s.Require().True(ok)
	s.Equal("add meal: insert meal plan entry", appErr.Op)
	s.ErrorIs(err, cause)
}

func (s *MealPlanServiceTestSuite) TestRemoveMeal_StorageFailureNamesBothOps() {
	s.entries.On("Delete", mock.Anything, int64(1), int64(7)).
		Return(errors.NewStorageError("delete meal plan entry", stderrors.New("disk I/O error"))).Once()

	err := s.service.RemoveMeal(s.ctx, 1, 7)
	appErr, ok := errors.As(err)
	s.Require().True(ok)
	s.Equal("remove meal: delete meal plan entry", appErr.Op)
	s.Empty(s.events.Events())
}

func (s *MealPlanServiceTestSuite) TestRemoveMeal() {
	s.entries.On("Delete", mock.Anything, int64(1), int64(7)).Return(nil).Once()

	s.Require().NoError(s.service.RemoveMeal(s.ctx, 1, 7))
	s.Equal([]string{mealplan.EventEntryRemoved}, s.events.Names())
}

func (s *MealPlanServiceTestSuite) TestRemoveMeal_NotFound() {
	s.entries.On("Delete", mock.Anything, int64(2), int64(7)).Return(errors.NewEntryNotFoundError(2, 7)).Once()

	err := s.service.RemoveMeal(s.ctx, 2, 7)
	s.True(errors.IsNotFound(err))
	s.Equal(errors.CodeEntryNotFound, errors.GetCode(err))
}

func (s *MealPlanServiceTestSuite) TestUpdateMealStatus() {
	s.entries.On("UpdateStatus", mock.Anything, int64(1), int64(7), mealplan.StatusCompleted).Return(nil).Once()

	err := s.service.UpdateMealStatus(s.ctx, inbound.UpdateMealStatusCommand{
		UserID:  1,
		EntryID: 7,
		Status:  "completed",
	})
	s.Require().NoError(err)
	s.Equal([]string{mealplan.EventEntryStatusChanged}, s.events.Names())
}

func (s *MealPlanServiceTestSuite) TestUpdateMealStatus_FreeLabel() {
	s.entries.On("UpdateStatus", mock.Anything, int64(1), int64(7), mealplan.Status("eaten out")).Return(nil).Once()

	err := s.service.UpdateMealStatus(s.ctx, inbound.UpdateMealStatusCommand{
		UserID:  1,
		EntryID: 7,
		Status:  " eaten out ",
	})
	s.NoError(err)
}

func (s *MealPlanServiceTestSuite) TestUpdateMealStatus_BlankRejected() {
	err := s.service.UpdateMealStatus(s.ctx, inbound.UpdateMealStatusCommand{UserID: 1, EntryID: 7, Status: ""})
	s.True(errors.IsValidation(err))
}

func (s *MealPlanServiceTestSuite) TestUpdateMealStatus_NotFound() {
	s.entries.On("UpdateStatus", mock.Anything, int64(1), int64(99), mealplan.StatusSkipped).
		Return(errors.NewEntryNotFoundError(1, 99)).Once()

	err := s.service.UpdateMealStatus(s.ctx, inbound.UpdateMealStatusCommand{UserID: 1, EntryID: 99, Status: "skipped"})
	s.True(errors.IsNotFound(err))
	s.Empty(s.events.Events())
}

func (s *MealPlanServiceTestSuite) TestGetWeek_QueriesHalfOpenRange() {
	start := testutils.Date("2024-03-04")
	end := testutils.Date("2024-03-11")

	r := s.recipes.NewRecipe().WithID(3).Build()
	found := []*mealplan.Entry{
		mealplan.Reconstruct(1, 1, r, start, "Breakfast", mealplan.StatusPlanned),
		mealplan.Reconstruct(2, 1, r, start.AddDays(6), "Dinner", mealplan.StatusCompleted),
	}
	s.entries.On("FindByDateRange", mock.Anything, int64(1), start, end).Return(found, nil).Once()

	week, err := s.service.GetWeek(s.ctx, inbound.WeekQuery{UserID: 1, WeekStart: "2024-03-04"})
	s.Require().NoError(err)
	s.Require().Len(week, 2)
	s.Equal(int64(1), week[0].EntryID)
	s.Equal("2024-03-04", week[0].MealDate)
	s.Equal("2024-03-10", week[1].MealDate)
	s.Equal("completed", week[1].Status)
	s.Equal(r.Title(), week[1].Recipe.Title)
}

func (s *MealPlanServiceTestSuite) TestGetWeek_EmptyIsNotNil() {
	s.entries.On("FindByDateRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*mealplan.Entry{}, nil).Once()

	week, err := s.service.GetWeek(s.ctx, inbound.WeekQuery{UserID: 1, WeekStart: "2024-12-30"})
	s.Require().NoError(err)
	s.NotNil(week)
	s.Empty(week)
}

func (s *MealPlanServiceTestSuite) TestGetWeek_InvalidStart() {
	_, err := s.service.GetWeek(s.ctx, inbound.WeekQuery{UserID: 1, WeekStart: "2024-02-30"})
	s.True(errors.IsValidation(err))
}

func (s *MealPlanServiceTestSuite) TestGetSavedRecipes() {
	saved := []recipe.Recipe{s.recipes.NewRecipe().WithID(4).Build()}
	s.saved.On("GetSavedRecipes", mock.Anything, int64(1)).Return(saved, nil).Once()

	out, err := s.service.GetSavedRecipes(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(int64(4), out[0].RecipeID)
}

func TestMealPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanServiceTestSuite))
}
