package domain

import (
	"github.com/google/uuid"
)

const (
	// DefaultBreakFrequency is the minutes of activity between long breaks.
	DefaultBreakFrequency = 60
	// MaxPlacementAttempts bounds slot seeking for one task.
	MaxPlacementAttempts = 50
	// BlockedProbeStep is how far the cursor moves past a blocked slot.
	BlockedProbeStep = 15
)

// RejectReason explains why a task or activity was not placed.
type RejectReason string

const (
	RejectAttemptLimit   RejectReason = "recursion_limit"
	RejectBudgetExceeded RejectReason = "budget_exceeded"
	RejectWindowExceeded RejectReason = "window_exceeded"
)

// RejectionPolicy decides what the task loop does after a rejection.
type RejectionPolicy int

const (
	// StopOnReject drops every remaining task after the first rejection.
	StopOnReject RejectionPolicy = iota
	// SkipOnReject moves on to the next task.
	SkipOnReject
)

// CursorState is the engine's position in the day. Each placement returns
// a new value.
type CursorState struct {
	Cursor      Clock
	Consumed    int
	LastBreakAt int
	Breaks      int
}

// NewCursorState starts a pass at start with nothing consumed.
func NewCursorState(start Clock) CursorState {
	return CursorState{Cursor: start}
}

// Outcome is the result of one placement. Rejected is empty when the task
// was placed; Items then holds the task and possibly a following break.
type Outcome struct {
	Items    []ScheduleItem
	State    CursorState
	Rejected RejectReason
}

func (o Outcome) Placed() bool { return o.Rejected == "" }

// Day carries the fixed constraints of one placement pass.
type Day struct {
	Date           Date
	Availability   Availability
	Work           WorkHours
	Blocked        []BlockedInterval
	Intensity      Intensity
	BreakFrequency int
}

func (d Day) breakFrequency() int {
	if d.BreakFrequency <= 0 {
		return DefaultBreakFrequency
	}
	return d.BreakFrequency
}

// Rejection records a task or activity left out of the plan.
type Rejection struct {
	SourceID uuid.UUID
	Title    string
	Reason   RejectReason
}

// Engine places tasks into a day.
type Engine struct {
	policy RejectionPolicy
	tracer Tracer
	newID  func() uuid.UUID
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithRejectionPolicy(p RejectionPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

func WithTracer(t Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithIDGenerator replaces uuid.New for item IDs.
func WithIDGenerator(gen func() uuid.UUID) EngineOption {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{policy: StopOnReject, tracer: noopTracer{}, newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) reject(task SchedulableTask, state CursorState, attempt int, reason RejectReason) Outcome {
	e.tracer.Trace(TraceEvent{
		Step:     TraceRejected,
		TaskID:   task.ID,
		Title:    task.Title,
		Cursor:   state.Cursor,
		Attempt:  attempt,
		Consumed: state.Consumed,
		Reason:   reason,
	})
	return Outcome{State: state, Rejected: reason}
}

// Place seeks the first slot at or after the cursor where task fits the
// budget and window and avoids work hours and blocked intervals.
func (e *Engine) Place(day Day, state CursorState, task SchedulableTask) Outcome {
	duration := task.DurationMinutes()
	cursor := state.Cursor
	windowEnd := day.Availability.WindowEnd

	for attempt := 1; ; attempt++ {
		probe := state
		probe.Cursor = cursor

		if attempt > MaxPlacementAttempts {
			return e.reject(task, probe, attempt, RejectAttemptLimit)
		}
		if state.Consumed+duration > day.Availability.AvailableMinutes {
			return e.reject(task, probe, attempt, RejectBudgetExceeded)
		}
		if cursor.Add(duration) > windowEnd {
			return e.reject(task, probe, attempt, RejectWindowExceeded)
		}
		if day.Work.Overlaps(cursor, cursor.Add(duration)) {
			if day.Work.End >= windowEnd {
				return e.reject(task, probe, attempt, RejectWindowExceeded)
			}
			cursor = day.Work.End
			e.tracer.Trace(TraceEvent{Step: TraceSnapWorkHours, TaskID: task.ID, Title: task.Title, Cursor: cursor, Attempt: attempt})
			continue
		}
		if IsBlocked(cursor, duration, day.Blocked) {
			cursor = cursor.Add(BlockedProbeStep)
			e.tracer.Trace(TraceEvent{Step: TraceProbeBlocked, TaskID: task.ID, Title: task.Title, Cursor: cursor, Attempt: attempt})
			continue
		}

		item := ScheduleItem{
			ID:              e.newID(),
			SourceID:        task.ID,
			Type:            task.ItemType(),
			Title:           task.Title,
			Description:     task.Description,
			ScheduledTime:   cursor,
			DurationMinutes: duration,
			DurationText:    task.DurationText,
			Priority:        PriorityScore(task, day.Date),
			ProjectID:       task.ProjectID,
			ProjectTitle:    task.ProjectTitle,
			ProjectCategory: task.ProjectCategory,
		}
		e.tracer.Trace(TraceEvent{Step: TracePlaced, TaskID: task.ID, Title: task.Title, Cursor: cursor, Attempt: attempt, Consumed: state.Consumed})

		next := state
		gap := day.Intensity.GapMinutes()
		next.Cursor = cursor.Add(duration + gap)
		next.Consumed += duration + gap

		items := []ScheduleItem{item}
		if brk, after, ok := e.maybeBreak(day, next); ok {
			items = append(items, brk)
			next = after
		}
		return Outcome{Items: items, State: next}
	}
}

// maybeBreak emits a long break once breakFrequency minutes passed since the
// last one. A break that would leave the window or hit work hours or a
// blocked interval is deferred; the timer keeps running.
func (e *Engine) maybeBreak(day Day, state CursorState) (ScheduleItem, CursorState, bool) {
	if state.Consumed-state.LastBreakAt < day.breakFrequency() {
		return ScheduleItem{}, state, false
	}

	length := day.Intensity.BreakDuration()
	start, end := state.Cursor, state.Cursor.Add(length)
	if end > day.Availability.WindowEnd || day.Work.Overlaps(start, end) || IsBlocked(start, length, day.Blocked) {
		e.tracer.Trace(TraceEvent{Step: TraceBreakDeferred, Cursor: start, Consumed: state.Consumed})
		return ScheduleItem{}, state, false
	}

	next := state
	next.Cursor = end
	next.Consumed += length
	next.LastBreakAt = next.Consumed
	next.Breaks++
	e.tracer.Trace(TraceEvent{Step: TraceBreak, Cursor: start, Consumed: next.Consumed})

	return ScheduleItem{
		ID:              e.newID(),
		Type:            ItemTypeBreak,
		Title:           "Break",
		ScheduledTime:   start,
		DurationMinutes: length,
	}, next, true
}

// PlanInput is everything a pass needs, already fetched.
type PlanInput struct {
	Date           Date
	Now            Clock
	IsToday        bool
	WakeUp         Clock
	Sleep          Clock
	MorningRoutine int
	NightRoutine   int
	Work           WorkHours
	Intensity      Intensity
	Style          Style
	BreakFrequency int
	Tasks          []SchedulableTask
	Blocked        []BlockedInterval
	Activities     []CustomActivity
}

// Result is a generated plan before suggestions.
type Result struct {
	Items        []ScheduleItem
	Availability Availability
	Day          Day
	State        CursorState
	Rejections   []Rejection
}

// PlacedMinutes sums the durations of every item that is not a break.
func (r Result) PlacedMinutes() int {
	total := 0
	for _, item := range r.Items {
		if !item.IsBreak() {
			total += item.DurationMinutes
		}
	}
	return total
}

// Run builds the day, orders the tasks, places them and appends the custom
// activities. It never fails; infeasible work shows up in Rejections.
func (e *Engine) Run(in PlanInput) Result {
	avail := CalculateAvailability(AvailabilityInput{
		WakeUp:         in.WakeUp,
		Sleep:          in.Sleep,
		MorningRoutine: in.MorningRoutine,
		NightRoutine:   in.NightRoutine,
		Work:           in.Work,
		Intensity:      in.Intensity,
		IsToday:        in.IsToday,
		Now:            in.Now,
	})
	day := Day{
		Date:           in.Date,
		Availability:   avail,
		Work:           in.Work.normalized(),
		Blocked:        ActiveOn(in.Blocked, in.Date.Weekday()),
		Intensity:      in.Intensity,
		BreakFrequency: in.BreakFrequency,
	}
	e.tracer.Trace(TraceEvent{Step: TraceWindow, Cursor: avail.WindowStart, Consumed: avail.AvailableMinutes})

	tasks := Prioritize(in.Tasks, in.Date)
	if in.Style == StyleThematicBlocks {
		tasks = GroupByCategory(tasks)
	}

	result := Result{Availability: avail, Day: day}
	state := NewCursorState(avail.WindowStart)
	for _, task := range tasks {
		outcome := e.Place(day, state, task)
		if !outcome.Placed() {
			result.Rejections = append(result.Rejections, Rejection{SourceID: task.ID, Title: task.Title, Reason: outcome.Rejected})
			if e.policy == StopOnReject {
				break
			}
			continue
		}
		result.Items = append(result.Items, outcome.Items...)
		state = outcome.State
	}

	items, state, skipped := e.AppendActivities(day, state, in.Activities)
	result.Items = append(result.Items, items...)
	result.Rejections = append(result.Rejections, skipped...)
	result.State = state
	return result
}
