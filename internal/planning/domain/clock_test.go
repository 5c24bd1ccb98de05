package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    Clock
		wantErr bool
	}{
		{input: "09:30", want: 570},
		{input: "00:00", want: 0},
		{input: "23:59:59", want: 1439},
		{input: " 7:05 ", want: 425},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "9", wantErr: true},
		{input: "ab:cd", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_String(t *testing.T) {
	assert.Equal(t, "18:05", At(18, 5).String())
	assert.Equal(t, "01:00", Clock(1500).String())
	assert.Equal(t, "00:00", Clock(MinutesPerDay).String())
	assert.Equal(t, 18, At(18, 5).Hour())
	assert.Equal(t, 5, At(18, 5).Minute())
	assert.Equal(t, 45, At(10, 0).Sub(At(9, 15)))
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)

	assert.Equal(t, time.Friday, d.Weekday())
	assert.Equal(t, "2025-03-15", d.AddDays(1).String())
	assert.Equal(t, "2025-02-28", d.AddDays(-14).String())
	assert.Equal(t, -4, d.DaysUntil(Date{Year: 2025, Month: time.March, Day: 10}))
	assert.Equal(t, 18, d.DaysUntil(Date{Year: 2025, Month: time.April, Day: 1}))
	assert.True(t, d.AddDays(-1).Before(d))
	assert.False(t, d.Before(d))
	assert.False(t, d.IsZero())
	assert.True(t, Date{}.IsZero())

	_, err = ParseDate("14/03/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}

	raw, err := json.Marshal(wrapper{Date: Date{Year: 2025, Month: time.March, Day: 14}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-14"}`, string(raw))

	var back wrapper
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "2025-03-14", back.Date.String())
}
