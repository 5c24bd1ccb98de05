package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// InputFile is a self-contained plan request, used to preview a plan
// without a database.
type InputFile struct {
	Date            string          `yaml:"date"`
	CurrentTime     string          `yaml:"current_time"`
	IsToday         *bool           `yaml:"is_today"`
	Intensity       string          `yaml:"intensity"`
	Style           string          `yaml:"style"`
	WakeUp          string          `yaml:"wake_up"`
	Sleep           string          `yaml:"sleep"`
	MorningRoutine  *int            `yaml:"morning_routine"`
	NightRoutine    *int            `yaml:"night_routine"`
	Work            *WorkHoursInput `yaml:"work"`
	BreakFrequency  int             `yaml:"break_frequency"`
	DailyWorkHours  int             `yaml:"daily_work_hours"`
	Tasks           []TaskInput     `yaml:"tasks"`
	Blocked         []BlockedInput  `yaml:"blocked"`
	Activities      []ActivityInput `yaml:"activities"`
	SkipOnRejection bool            `yaml:"skip_on_rejection"`
}

type WorkHoursInput struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type TaskInput struct {
	ID            string `yaml:"id"`
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Duration      string `yaml:"duration"`
	Status        string `yaml:"status"`
	Tracking      bool   `yaml:"tracking"`
	ScheduledDate string `yaml:"scheduled_date"`
	OrderIndex    int    `yaml:"order_index"`
	Priority      int    `yaml:"priority"`
	Project       string `yaml:"project"`
	Category      string `yaml:"category"`
}

type BlockedInput struct {
	Start string   `yaml:"start"`
	End   string   `yaml:"end"`
	Days  []string `yaml:"days"`
	Label string   `yaml:"label"`
}

type ActivityInput struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Duration    string `yaml:"duration"`
	CanCombine  bool   `yaml:"can_combine"`
}

// LoadInputFile reads a YAML plan request from path. Missing fields take
// the default profile values, dates and clocks default to now.
func LoadInputFile(path string, now time.Time) (domain.PlanInput, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PlanInput{}, false, fmt.Errorf("input: read %s: %w", path, err)
	}
	return ParseInputFile(data, now)
}

// ParseInputFile decodes YAML bytes into engine input. The boolean reports
// whether the file asks to skip rejected tasks instead of stopping.
func ParseInputFile(data []byte, now time.Time) (domain.PlanInput, bool, error) {
	var f InputFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.PlanInput{}, false, fmt.Errorf("input: parse: %w", err)
	}
	f.applyDefaults(now)
	in, err := f.planInput()
	if err != nil {
		return domain.PlanInput{}, false, err
	}
	return in, f.SkipOnRejection, nil
}

func (f *InputFile) applyDefaults(now time.Time) {
	defaults := domain.DefaultProfile(uuid.Nil)
	if f.Date == "" {
		f.Date = domain.DateOf(now).String()
	}
	if f.CurrentTime == "" {
		f.CurrentTime = domain.At(now.Hour(), now.Minute()).String()
	}
	if f.IsToday == nil {
		today := f.Date == domain.DateOf(now).String()
		f.IsToday = &today
	}
	if f.WakeUp == "" {
		f.WakeUp = defaults.WakeUp.String()
	}
	if f.Sleep == "" {
		f.Sleep = defaults.Sleep.String()
	}
	if f.MorningRoutine == nil {
		f.MorningRoutine = &defaults.MorningRoutine
	}
	if f.NightRoutine == nil {
		f.NightRoutine = &defaults.NightRoutine
	}
	if f.Work == nil {
		f.Work = &WorkHoursInput{Start: defaults.Work.Start.String(), End: defaults.Work.End.String()}
	}
	if f.BreakFrequency <= 0 {
		f.BreakFrequency = defaults.BreakFrequency
	}
	for i := range f.Tasks {
		if f.Tasks[i].Status == "" {
			f.Tasks[i].Status = string(domain.TaskStatusPending)
		}
		if f.Tasks[i].Priority == 0 {
			f.Tasks[i].Priority = domain.ProjectPriority(nil, domain.Date{})
		}
	}
}

func (f *InputFile) planInput() (domain.PlanInput, error) {
	var errs []error
	clock := func(field, value string) domain.Clock {
		c, err := domain.ParseClock(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		return c
	}

	date, err := domain.ParseDate(f.Date)
	if err != nil {
		errs = append(errs, fmt.Errorf("date: %w", err))
	}
	in := domain.PlanInput{
		Date:           date,
		Now:            clock("current_time", f.CurrentTime),
		IsToday:        *f.IsToday,
		WakeUp:         clock("wake_up", f.WakeUp),
		Sleep:          clock("sleep", f.Sleep),
		MorningRoutine: *f.MorningRoutine,
		NightRoutine:   *f.NightRoutine,
		Intensity:      domain.ParseIntensity(f.Intensity),
		Style:          domain.ParseStyle(f.Style),
		BreakFrequency: f.BreakFrequency,
	}
	if f.Work.Start != "" || f.Work.End != "" {
		in.Work = domain.WorkHours{Start: clock("work.start", f.Work.Start), End: clock("work.end", f.Work.End)}
	}

	for i, t := range f.Tasks {
		task := domain.SchedulableTask{
			ID:              inputID(t.ID, "task", t.Title, i),
			Title:           t.Title,
			Description:     t.Description,
			DurationText:    t.Duration,
			Status:          domain.TaskStatus(t.Status),
			TrackingEnabled: t.Tracking,
			OrderIndex:      t.OrderIndex,
			ProjectPriority: t.Priority,
			ProjectTitle:    t.Project,
			ProjectCategory: t.Category,
		}
		if t.ScheduledDate != "" {
			d, err := domain.ParseDate(t.ScheduledDate)
			if err != nil {
				errs = append(errs, fmt.Errorf("tasks[%d].scheduled_date: %w", i, err))
			}
			task.ScheduledDate = &d
		}
		in.Tasks = append(in.Tasks, task)
	}

	for i, b := range f.Blocked {
		days, err := ParseWeekdays(b.Days)
		if err != nil {
			errs = append(errs, fmt.Errorf("blocked[%d].days: %w", i, err))
		}
		interval, err := domain.NewBlockedInterval(
			clock(fmt.Sprintf("blocked[%d].start", i), b.Start),
			clock(fmt.Sprintf("blocked[%d].end", i), b.End),
			days, b.Label,
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("blocked[%d]: %w", i, err))
		}
		in.Blocked = append(in.Blocked, interval)
	}

	for i, a := range f.Activities {
		in.Activities = append(in.Activities, domain.CustomActivity{
			ID:           inputID("", "activity", a.Title, i),
			Title:        a.Title,
			Description:  a.Description,
			DurationText: a.Duration,
			CanCombine:   a.CanCombine,
		})
	}

	if len(errs) > 0 {
		return domain.PlanInput{}, fmt.Errorf("input: validation failed: %w", errors.Join(errs...))
	}
	return in, nil
}

// inputID keeps IDs stable across runs of the same file.
func inputID(raw, kind, title string, index int) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%s/%s", kind, index, title, raw)))
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// ParseWeekdays accepts English day names or unambiguous prefixes of at
// least three letters, in any case.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		day, ok := weekdays[key]
		if !ok && len(key) >= 3 {
			for full, d := range weekdays {
				if strings.HasPrefix(full, key) {
					day, ok = d, true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}
