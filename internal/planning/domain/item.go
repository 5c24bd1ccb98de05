package domain

import "github.com/google/uuid"

// ItemType classifies a plan entry.
type ItemType string

const (
	ItemTypeSubstep           ItemType = "substep"
	ItemTypeTracker           ItemType = "tracker"
	ItemTypeCustomActivity    ItemType = "custom_activity"
	ItemTypeBreak             ItemType = "break"
	ItemTypeSuggestedActivity ItemType = "suggested_activity"
)

// IsValid reports a known item type.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeSubstep, ItemTypeTracker, ItemTypeCustomActivity, ItemTypeBreak, ItemTypeSuggestedActivity:
		return true
	}
	return false
}

// Location is a place attached to a suggested activity.
type Location struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address,omitempty" yaml:"address"`
	Type    string `json:"type,omitempty" yaml:"type"`
}

// ScheduleItem is one entry of a daily plan. SourceID is the sub-step or
// activity it came from and is nil for breaks and suggestions.
type ScheduleItem struct {
	ID              uuid.UUID
	SourceID        uuid.UUID
	Type            ItemType
	Title           string
	Description     string
	ScheduledTime   Clock
	DurationMinutes int
	DurationText    string
	Priority        int
	ProjectID       uuid.UUID
	ProjectTitle    string
	ProjectCategory string
	Location        *Location
	CanCombine      bool
	Completed       bool
}

// End is the clock time the item finishes.
func (i ScheduleItem) End() Clock { return i.ScheduledTime.Add(i.DurationMinutes) }

// IsBreak reports a pause inserted by the engine.
func (i ScheduleItem) IsBreak() bool { return i.Type == ItemTypeBreak }
