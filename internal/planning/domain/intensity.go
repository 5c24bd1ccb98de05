package domain

import "strings"

// Intensity sets how much of the free time a plan may fill and how long
// the pauses between tasks are.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityIntense  Intensity = "intense"
)

type intensityProfile struct {
	workRatio     float64
	gapMinutes    int
	breakDuration int
}

var intensities = map[Intensity]intensityProfile{
	IntensityLight:    {workRatio: 0.60, gapMinutes: 10, breakDuration: 15},
	IntensityModerate: {workRatio: 0.75, gapMinutes: 5, breakDuration: 10},
	IntensityIntense:  {workRatio: 0.90, gapMinutes: 3, breakDuration: 5},
}

// ParseIntensity falls back to moderate for unknown values.
func ParseIntensity(s string) Intensity {
	i := Intensity(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := intensities[i]; ok {
		return i
	}
	return IntensityModerate
}

func (i Intensity) profile() intensityProfile {
	if p, ok := intensities[i]; ok {
		return p
	}
	return intensities[IntensityModerate]
}

// WorkRatio is the share of free minutes the plan may use.
func (i Intensity) WorkRatio() float64 { return i.profile().workRatio }

// GapMinutes is the pause inserted after every placed task.
func (i Intensity) GapMinutes() int { return i.profile().gapMinutes }

// BreakDuration is the length of a long break.
func (i Intensity) BreakDuration() int { return i.profile().breakDuration }

// Style selects the order in which tasks are offered to the engine.
type Style string

const (
	StyleMixed          Style = "mixed"
	StyleThematicBlocks Style = "thematic_blocks"
)

// ParseStyle falls back to mixed for unknown values.
func ParseStyle(s string) Style {
	if Style(strings.ToLower(strings.TrimSpace(s))) == StyleThematicBlocks {
		return StyleThematicBlocks
	}
	return StyleMixed
}
