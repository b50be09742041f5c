package gorm

import (
	"context"

	"github.com/recipewiz/backend/internal/domain/mealplan"
	"github.com/recipewiz/backend/internal/ports/outbound"
	apperrors "github.com/recipewiz/backend/pkg/errors"
	"gorm.io/gorm"
)

// MealPlanRepository implements outbound.MealPlanStore using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

var _ outbound.MealPlanStore = (*MealPlanRepository)(nil)

// Insert stores a new entry and assigns its id
func (r *MealPlanRepository) Insert(ctx context.Context, entry *mealplan.Entry) error {
	model := EntryToModel(entry)
	model.EntryID = 0

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewStorageError("insert meal plan entry", err)
	}

	entry.AssignID(model.EntryID)
	return nil
}

// UpdateStatus sets the status of the user's entry in one statement
func (r *MealPlanRepository) UpdateStatus(ctx context.Context, userID, entryID int64, status mealplan.Status) error {
	result := r.db.WithContext(ctx).
		Model(&MealPlanEntryModel{}).
		Where("user_id = ? AND entry_id = ?", userID, entryID).
		Update("status", string(status))

	if result.Error != nil {
		return apperrors.NewStorageError("update meal plan entry status", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewEntryNotFoundError(userID, entryID)
	}

	return nil
}

// Delete removes the user's entry in one statement
func (r *MealPlanRepository) Delete(ctx context.Context, userID, entryID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND entry_id = ?", userID, entryID).
		Delete(&MealPlanEntryModel{})

	if result.Error != nil {
		return apperrors.NewStorageError("delete meal plan entry", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewEntryNotFoundError(userID, entryID)
	}

	return nil
}

// FindByDateRange returns entries with from <= meal_date < to ordered by
// date, then by entry id (insertion order). ISO dates compare correctly
// as strings.
func (r *MealPlanRepository) FindByDateRange(ctx context.Context, userID int64, from, to mealplan.Date) ([]*mealplan.Entry, error) {
	var models []MealPlanEntryModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND meal_date >= ? AND meal_date < ?", userID, from.String(), to.String()).
		Order("meal_date ASC").
		Order("entry_id ASC").
		Find(&models)

	if result.Error != nil {
		return nil, apperrors.NewStorageError("find meal plan entries", result.Error)
	}

	entries := make([]*mealplan.Entry, len(models))
	for i := range models {
		e, err := ModelToEntry(&models[i])
		if err != nil {
			return nil, apperrors.NewStorageError("decode meal plan entry", err)
		}
		entries[i] = e
	}

	return entries, nil
}
