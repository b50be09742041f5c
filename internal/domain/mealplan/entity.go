// Package mealplan contains the meal-planning calendar domain: dated
// entries that each carry a snapshot of a saved recipe.
package mealplan

import (
	"strings"
	"time"

	"github.com/recipewiz/backend/internal/domain/recipe"
	"github.com/recipewiz/backend/internal/domain/shared"
)

// Status is the progress label of an entry. Any status may be set from
// any other; the constants are the labels clients use.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// ParseStatus normalizes a client-supplied status label
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrMissingStatus
	}
	return Status(s), nil
}

// IsKnown reports whether the status is one of the predefined labels
func (s Status) IsKnown() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// Entry is one meal scheduled by a user on a calendar day.
type Entry struct {
	shared.AggregateRoot

	id       int64
	userID   int64
	recipe   recipe.Recipe
	date     Date
	mealType string
	status   Status
}

// NewEntry plans a meal. The recipe is deep-copied so later changes to
// the saved recipe never reach the entry.
func NewEntry(userID int64, snapshot recipe.Recipe, date Date, mealType string) (*Entry, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	if date.IsZero() {
		return nil, ErrMissingDate
	}
	mealType = strings.TrimSpace(mealType)
	if mealType == "" {
		return nil, ErrMissingMealType
	}

	e := &Entry{
		userID:   userID,
		recipe:   snapshot.Clone(),
		date:     date,
		mealType: mealType,
		status:   StatusPlanned,
	}
	return e, nil
}

// Reconstruct rebuilds a persisted entry without raising events
func Reconstruct(id, userID int64, snapshot recipe.Recipe, date Date, mealType string, status Status) *Entry {
	return &Entry{
		id:       id,
		userID:   userID,
		recipe:   snapshot,
		date:     date,
		mealType: mealType,
		status:   status,
	}
}

// AssignID records the storage-assigned identifier and raises the
// planned event.
func (e *Entry) AssignID(id int64) {
	e.id = id
	e.AddEvent(EntryPlannedEvent{
		EntryID:   id,
		UserID:    e.userID,
		RecipeID:  e.recipe.ID(),
		MealDate:  e.date.String(),
		MealType:  e.mealType,
		PlannedAt: time.Now(),
	})
}

// ID returns the entry identifier, zero until stored
func (e *Entry) ID() int64 {
	return e.id
}

// UserID returns the owning user
func (e *Entry) UserID() int64 {
	return e.userID
}

// Recipe returns a copy of the recipe snapshot
func (e *Entry) Recipe() recipe.Recipe {
	return e.recipe.Clone()
}

// Date returns the planned day
func (e *Entry) Date() Date {
	return e.date
}

// MealType returns the meal slot label, e.g. "Breakfast"
func (e *Entry) MealType() string {
	return e.mealType
}

// Status returns the current status label
func (e *Entry) Status() Status {
	return e.status
}
