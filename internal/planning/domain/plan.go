package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/memoryplanner/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrPlanNotFound = errors.New("daily plan not found")
	ErrItemNotFound = errors.New("plan item not found")
)

// DailyPlan is the stored plan of one user for one date. Its items only
// change by regeneration, which replaces them all, or by toggling an
// item's completed flag.
type DailyPlan struct {
	sharedDomain.BaseAggregateRoot
	userID           uuid.UUID
	date             Date
	items            []ScheduleItem
	availableMinutes int
	intensity        Intensity
	style            Style
	generatedAt      time.Time
}

func NewDailyPlan(userID uuid.UUID, date Date) *DailyPlan {
	return &DailyPlan{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		date:              date,
		intensity:         IntensityModerate,
		style:             StyleMixed,
	}
}

// RehydrateDailyPlan rebuilds a plan from storage without raising events.
func RehydrateDailyPlan(
	base sharedDomain.BaseAggregateRoot,
	userID uuid.UUID,
	date Date,
	items []ScheduleItem,
	availableMinutes int,
	intensity Intensity,
	style Style,
	generatedAt time.Time,
) *DailyPlan {
	return &DailyPlan{
		BaseAggregateRoot: base,
		userID:            userID,
		date:              date,
		items:             items,
		availableMinutes:  availableMinutes,
		intensity:         intensity,
		style:             style,
		generatedAt:       generatedAt,
	}
}

func (p *DailyPlan) UserID() uuid.UUID      { return p.userID }
func (p *DailyPlan) Date() Date             { return p.date }
func (p *DailyPlan) AvailableMinutes() int  { return p.availableMinutes }
func (p *DailyPlan) Intensity() Intensity   { return p.intensity }
func (p *DailyPlan) Style() Style           { return p.style }
func (p *DailyPlan) GeneratedAt() time.Time { return p.generatedAt }

// Items returns a copy of the ordered items.
func (p *DailyPlan) Items() []ScheduleItem {
	return append([]ScheduleItem(nil), p.items...)
}

// Replace swaps in a freshly generated set of items.
func (p *DailyPlan) Replace(items []ScheduleItem, availableMinutes int, intensity Intensity, style Style, generatedAt time.Time) {
	p.items = append([]ScheduleItem(nil), items...)
	p.availableMinutes = availableMinutes
	p.intensity = intensity
	p.style = style
	p.generatedAt = generatedAt.UTC()
	p.Touch()
	p.AddDomainEvent(newPlanGenerated(p))
}

// SetItemCompleted toggles one item. Setting the current value again is a
// no-op and raises nothing.
func (p *DailyPlan) SetItemCompleted(itemID uuid.UUID, completed bool) error {
	for i := range p.items {
		if p.items[i].ID != itemID {
			continue
		}
		if p.items[i].Completed == completed {
			return nil
		}
		p.items[i].Completed = completed
		p.Touch()
		p.AddDomainEvent(newItemStatusChanged(p, p.items[i]))
		return nil
	}
	return ErrItemNotFound
}

// CompletedCount counts ticked items.
func (p *DailyPlan) CompletedCount() int {
	n := 0
	for _, item := range p.items {
		if item.Completed {
			n++
		}
	}
	return n
}
