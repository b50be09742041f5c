package mealplan

import "time"

// Event names
const (
	EventEntryPlanned       = "mealplan.entry.planned"
	EventEntryStatusChanged = "mealplan.entry.status_changed"
	EventEntryRemoved       = "mealplan.entry.removed"
)

// EntryPlannedEvent is raised when a meal is added to the calendar
type EntryPlannedEvent struct {
	EntryID   int64
	UserID    int64
	RecipeID  int64
	MealDate  string
	MealType  string
	PlannedAt time.Time
}

func (e EntryPlannedEvent) EventName() string {
	return EventEntryPlanned
}

func (e EntryPlannedEvent) OccurredAt() time.Time {
	return e.PlannedAt
}

// EntryStatusChangedEvent is raised when an entry's status is set
type EntryStatusChangedEvent struct {
	EntryID   int64
	UserID    int64
	Status    Status
	ChangedAt time.Time
}

func (e EntryStatusChangedEvent) EventName() string {
	return EventEntryStatusChanged
}

func (e EntryStatusChangedEvent) OccurredAt() time.Time {
	return e.ChangedAt
}

// EntryRemovedEvent is raised when an entry is deleted
type EntryRemovedEvent struct {
	EntryID   int64
	UserID    int64
	RemovedAt time.Time
}

func (e EntryRemovedEvent) EventName() string {
	return EventEntryRemoved
}

func (e EntryRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}
