package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputNow = time.Date(2025, time.March, 14, 8, 30, 0, 0, time.UTC)

const eveningInput = `
date: 2025-03-14
is_today: false
intensity: moderate
wake_up: "09:00"
sleep: "23:00"
morning_routine: 0
night_routine: 30
work:
  start: "09:00"
  end: "18:00"
tasks:
  - title: write chapter
    duration: 60min
    priority: 90
  - title: review notes
    duration: 45min
    priority: 70
    scheduled_date: 2025-03-14
blocked:
  - start: "19:00"
    end: "19:30"
    days: [fri, saturday]
    label: dinner
activities:
  - title: yoga
    duration: 30min
`

func TestParseInputFile(t *testing.T) {
	in, skip, err := ParseInputFile([]byte(eveningInput), inputNow)
	require.NoError(t, err)

	assert.False(t, skip)
	assert.Equal(t, domain.Date{Year: 2025, Month: time.March, Day: 14}, in.Date)
	assert.False(t, in.IsToday)
	assert.Equal(t, domain.At(9, 0), in.WakeUp)
	assert.Equal(t, 0, in.MorningRoutine)
	assert.Equal(t, domain.WorkHours{Start: domain.At(9, 0), End: domain.At(18, 0)}, in.Work)
	assert.Equal(t, domain.DefaultBreakFrequency, in.BreakFrequency)

	require.Len(t, in.Tasks, 2)
	assert.Equal(t, domain.TaskStatusPending, in.Tasks[0].Status)
	require.NotNil(t, in.Tasks[1].ScheduledDate)
	require.Len(t, in.Blocked, 1)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, in.Blocked[0].Days)
	require.Len(t, in.Activities, 1)

	again, _, err := ParseInputFile([]byte(eveningInput), inputNow)
	require.NoError(t, err)
	assert.Equal(t, in.Tasks[0].ID, again.Tasks[0].ID)
}

func TestParseInputFile_Defaults(t *testing.T) {
	in, _, err := ParseInputFile([]byte("tasks:\n  - title: read\n"), inputNow)
	require.NoError(t, err)

	profile := domain.DefaultProfile(in.Tasks[0].ID)
	assert.Equal(t, domain.DateOf(inputNow), in.Date)
	assert.True(t, in.IsToday)
	assert.Equal(t, domain.At(8, 30), in.Now)
	assert.Equal(t, profile.WakeUp, in.WakeUp)
	assert.Equal(t, profile.NightRoutine, in.NightRoutine)
	assert.Equal(t, profile.Work, in.Work)
	assert.Equal(t, domain.IntensityModerate, in.Intensity)
	assert.Equal(t, domain.StyleMixed, in.Style)
	assert.Equal(t, 50, in.Tasks[0].ProjectPriority)
}

func TestParseInputFile_NoWorkHours(t *testing.T) {
	in, _, err := ParseInputFile([]byte("work: {}\n"), inputNow)
	require.NoError(t, err)

	assert.True(t, in.Work.IsZero())
}

func TestParseInputFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "tasks: [", "input: parse"},
		{"bad clock", "wake_up: \"25:00\"\n", "wake_up"},
		{"bad date", "date: tomorrow\n", "date"},
		{"bad weekday", "blocked:\n  - {start: \"10:00\", end: \"11:00\", days: [someday]}\n", "blocked[0].days"},
		{"inverted interval", "blocked:\n  - {start: \"11:00\", end: \"10:00\"}\n", "blocked[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseInputFile([]byte(tt.yaml), inputNow)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skip_on_rejection: true\n"), 0o600))

	_, skip, err := LoadInputFile(path, inputNow)
	require.NoError(t, err)
	assert.True(t, skip)

	_, _, err = LoadInputFile(filepath.Join(t.TempDir(), "missing.yaml"), inputNow)
	assert.Error(t, err)
}
