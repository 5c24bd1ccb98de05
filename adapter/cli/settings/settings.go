package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/adapter/cli"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/services"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var settingsJSON bool

var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage planning settings",
	Long:  `Show and change the profile, blocked time and custom activities the planner uses.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the planning profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}
		profile, err := loadProfile(cmd, app)
		if err != nil {
			return err
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(profileView(profile))
		}
		printProfile(cmd.OutOrStdout(), profile)
		return nil
	},
}

var (
	wakeUp         string
	sleepAt        string
	morningRoutine int
	nightRoutine   int
	workStart      string
	workEnd        string
	noWork         bool
	workDays       []string
	breakFrequency int
	intensity      string
	style          string
	city           string
	contextNotes   string
	autoPlan       string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the planning profile",
	Long: `Change one or more profile fields. Fields without a flag keep their value.

Examples:
  planner settings set --wake 06:30 --sleep 22:30
  planner settings set --work-start 10:00 --work-end 16:00 --work-days mon,tue,wed
  planner settings set --no-work
  planner settings set --intensity light --style thematic_blocks --auto-plan on`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := settingsApp()
		if err != nil {
			return err
		}
		profile, err := loadProfile(cmd, app)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &profile); err != nil {
			return err
		}
		if err := app.Profiles.Save(cmd.Context(), profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(profileView(profile))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Profile saved.")
		return nil
	},
}

func applyFlags(cmd *cobra.Command, p *domain.Profile) error {
	flags := cmd.Flags()
	var errs []error
	clock := func(name, value string, dst *domain.Clock) {
		if !flags.Changed(name) {
			return
		}
		c, err := domain.ParseClock(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
			return
		}
		*dst = c
	}

	clock("wake", wakeUp, &p.WakeUp)
	clock("sleep", sleepAt, &p.Sleep)
	clock("work-start", workStart, &p.Work.Start)
	clock("work-end", workEnd, &p.Work.End)
	if noWork {
		p.Work = domain.WorkHours{}
		p.WorkDays = nil
	}
	if flags.Changed("work-days") {
		days, err := services.ParseWeekdays(splitList(workDays))
		if err != nil {
			errs = append(errs, fmt.Errorf("--work-days: %w", err))
		}
		p.WorkDays = days
	}
	if flags.Changed("morning-routine") {
		p.MorningRoutine = morningRoutine
	}
	if flags.Changed("night-routine") {
		p.NightRoutine = nightRoutine
	}
	if flags.Changed("break-every") {
		p.BreakFrequency = breakFrequency
	}
	if flags.Changed("intensity") {
		p.Intensity = domain.ParseIntensity(intensity)
	}
	if flags.Changed("style") {
		p.Style = domain.ParseStyle(style)
	}
	if flags.Changed("city") {
		p.City = strings.TrimSpace(city)
	}
	if flags.Changed("notes") {
		p.ContextNotes = contextNotes
	}
	if flags.Changed("auto-plan") {
		switch strings.ToLower(autoPlan) {
		case "on", "true", "yes":
			p.AutoPlan = true
		case "off", "false", "no":
			p.AutoPlan = false
		default:
			errs = append(errs, fmt.Errorf("--auto-plan: want on or off, got %q", autoPlan))
		}
	}
	if p.MorningRoutine < 0 || p.NightRoutine < 0 || p.BreakFrequency < 0 {
		errs = append(errs, errors.New("routine and break minutes must not be negative"))
	}
	if !p.Work.IsZero() && p.Work.End <= p.Work.Start {
		errs = append(errs, errors.New("work end must be after work start"))
	}
	return errors.Join(errs...)
}

func settingsApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Profiles == nil {
		return nil, errors.New("settings not configured - database connection required")
	}
	if app.CurrentUserID == uuid.Nil {
		return nil, errors.New("current user not configured")
	}
	return app, nil
}

func loadProfile(cmd *cobra.Command, app *cli.App) (domain.Profile, error) {
	profile, err := app.Profiles.FindByUserID(cmd.Context(), app.CurrentUserID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return domain.DefaultProfile(app.CurrentUserID), nil
	}
	return *profile, nil
}

type profileJSON struct {
	WakeUp         string   `json:"wake_up"`
	Sleep          string   `json:"sleep"`
	MorningRoutine int      `json:"morning_routine_minutes"`
	NightRoutine   int      `json:"night_routine_minutes"`
	WorkStart      string   `json:"work_start,omitempty"`
	WorkEnd        string   `json:"work_end,omitempty"`
	WorkDays       []string `json:"work_days"`
	BreakFrequency int      `json:"break_frequency_minutes"`
	Intensity      string   `json:"intensity"`
	Style          string   `json:"style"`
	City           string   `json:"city,omitempty"`
	AutoPlan       bool     `json:"auto_plan"`
}

func profileView(p domain.Profile) profileJSON {
	v := profileJSON{
		WakeUp:         p.WakeUp.String(),
		Sleep:          p.Sleep.String(),
		MorningRoutine: p.MorningRoutine,
		NightRoutine:   p.NightRoutine,
		WorkDays:       weekdayNames(p.WorkDays),
		BreakFrequency: p.BreakFrequency,
		Intensity:      string(p.Intensity),
		Style:          string(p.Style),
		City:           p.City,
		AutoPlan:       p.AutoPlan,
	}
	if !p.Work.IsZero() {
		v.WorkStart, v.WorkEnd = p.Work.Start.String(), p.Work.End.String()
	}
	return v
}

func printProfile(w io.Writer, p domain.Profile) {
	v := profileView(p)
	fmt.Fprintf(w, "Wake up:    %s (routine %d min)\n", v.WakeUp, v.MorningRoutine)
	fmt.Fprintf(w, "Sleep:      %s (routine %d min)\n", v.Sleep, v.NightRoutine)
	if v.WorkStart == "" {
		fmt.Fprintln(w, "Work:       none")
	} else {
		days := "every day"
		if len(v.WorkDays) > 0 {
			days = strings.Join(v.WorkDays, ", ")
		}
		fmt.Fprintf(w, "Work:       %s-%s on %s\n", v.WorkStart, v.WorkEnd, days)
	}
	fmt.Fprintf(w, "Breaks:     every %d min\n", v.BreakFrequency)
	fmt.Fprintf(w, "Intensity:  %s\n", v.Intensity)
	fmt.Fprintf(w, "Style:      %s\n", v.Style)
	if v.City != "" {
		fmt.Fprintf(w, "City:       %s\n", v.City)
	}
	fmt.Fprintf(w, "Auto plan:  %t\n", v.AutoPlan)
}

func weekdayNames(days []time.Weekday) []string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return names
}

// splitList accepts both repeated flags and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func init() {
	Cmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "output JSON")

	setCmd.Flags().StringVar(&wakeUp, "wake", "", "wake-up time (HH:MM)")
	setCmd.Flags().StringVar(&sleepAt, "sleep", "", "sleep time (HH:MM)")
	setCmd.Flags().IntVar(&morningRoutine, "morning-routine", 0, "morning routine minutes")
	setCmd.Flags().IntVar(&nightRoutine, "night-routine", 0, "night routine minutes")
	setCmd.Flags().StringVar(&workStart, "work-start", "", "work start (HH:MM)")
	setCmd.Flags().StringVar(&workEnd, "work-end", "", "work end (HH:MM)")
	setCmd.Flags().BoolVar(&noWork, "no-work", false, "clear work hours")
	setCmd.Flags().StringSliceVar(&workDays, "work-days", nil, "work days (mon,tue,...)")
	setCmd.Flags().IntVar(&breakFrequency, "break-every", 0, "minutes of work between breaks")
	setCmd.Flags().StringVar(&intensity, "intensity", "", "light, moderate or intense")
	setCmd.Flags().StringVar(&style, "style", "", "mixed or thematic_blocks")
	setCmd.Flags().StringVar(&city, "city", "", "city used for activity suggestions")
	setCmd.Flags().StringVar(&contextNotes, "notes", "", "notes passed to the suggestion service")
	setCmd.Flags().StringVar(&autoPlan, "auto-plan", "", "generate tomorrow's plan every night (on/off)")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(blockCmd)
	Cmd.AddCommand(activityCmd)
}
