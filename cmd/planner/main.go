package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	profilePath string
	asJSON      bool
	now         func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now} //nolint:exhaustruct // flags fill the rest.

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Offline training planner working on a YAML profile",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.profilePath, "profile", "", "profile YAML file, the default profile when empty")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(newNormalizeCmd(opts))
	root.AddCommand(newMenuCmd(opts))
	root.AddCommand(newTodayCmd(opts))
	root.AddCommand(newRoadmapCmd(opts))
	return root
}

// loadProfile reads and normalizes the --profile file.
func (o *rootOptions) loadProfile() (coach.Profile, error) {
	if o.profilePath == "" {
		return coach.Normalize(nil), nil
	}
	data, err := os.ReadFile(o.profilePath)
	if err != nil {
		return coach.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	in, err := coach.ParseInputYAML(data)
	if err != nil {
		return coach.Profile{}, fmt.Errorf("parse profile %s: %w", o.profilePath, err)
	}
	return coach.Normalize(in), nil
}

// date parses the --date flag, today when empty.
func (o *rootOptions) date(s string) (coach.Date, error) {
	if s == "" {
		return coach.DateOf(o.now()), nil
	}
	d, err := coach.ParseDate(s)
	if err != nil {
		return coach.Date{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Print the canonical form of the profile as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadProfile()
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2) //nolint:mnd // two space indent.
			if err = enc.Encode(p); err != nil {
				return fmt.Errorf("encode yaml: %w", err)
			}
			if err = enc.Close(); err != nil {
				return fmt.Errorf("close yaml encoder: %w", err)
			}
			return nil
		},
	}
}

func newMenuCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the quick menu of the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadProfile()
			if err != nil {
				return err
			}
			menu := coach.GenerateMenu(p)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), menu)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
			_, _ = fmt.Fprintln(tw, "KEY\tNAME\tSETS\tREPS\tWEIGHT\tREST")
			for _, item := range menu {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%ds\n", item.Key, item.Name, item.TargetSets, item.TargetReps,
					formatKg(item.SuggestedWeightKg), item.RestSeconds)
			}
			return tw.Flush() //nolint:wrapcheck // stdout.
		},
	}
}

func newTodayCmd(opts *rootOptions) *cobra.Command {
	var (
		dateFlag string
		days     []string
		sessions int
	)
	today := &cobra.Command{
		Use:   "today",
		Short: "Print the scheduled session of a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadProfile()
			if err != nil {
				return err
			}
			date, err := opts.date(dateFlag)
			if err != nil {
				return err
			}
			plan, err := weekPlan(date, days, sessions)
			if err != nil {
				return err
			}
			session := coach.ScheduleFor(p, &plan, date, nil)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), session)
			}
			return printSession(cmd.OutOrStdout(), session)
		},
	}
	today.Flags().StringVar(&dateFlag, "date", "", "date as YYYY-MM-DD, today when empty")
	today.Flags().StringSliceVar(&days, "days", nil, "training weekdays like mon,wed,fri")
	today.Flags().IntVar(&sessions, "sessions", 0, "sessions per week (2-4)")
	return today
}

// weekPlan builds the plan of the week containing date from the --days and --sessions flags.
func weekPlan(date coach.Date, days []string, sessions int) (coach.WeekPlan, error) {
	plan := coach.DefaultWeekPlan(date)
	if len(days) > 0 {
		plan.Days = [7]bool{}
		for _, token := range days {
			day, ok := coach.ParseWeekday(token)
			if !ok {
				return coach.WeekPlan{}, fmt.Errorf("--days: unknown weekday %q", token)
			}
			plan.Days[day] = true
		}
	}
	if sessions != 0 {
		if !coach.ValidSessionsPerWeek(sessions) {
			return coach.WeekPlan{}, fmt.Errorf("--sessions: %d is not between 2 and 4", sessions)
		}
		plan.SessionsPerWeek = sessions
	}
	return plan, nil
}

func printSession(w io.Writer, s coach.Session) error {
	_, _ = fmt.Fprintf(w, "%s %s\n", s.Date, s.Label)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
	_, _ = fmt.Fprintln(tw, "EXERCISE\tSETS\tREPS\tWEIGHT\tNOTES")
	for _, e := range s.Exercises {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", e.Name, e.Sets, e.Reps, formatKg(e.SuggestedWeightKg), e.Notes)
	}
	if len(s.RestStretches) > 0 {
		_, _ = fmt.Fprintln(tw, "\nSTRETCH\tSECONDS")
		for _, st := range s.RestStretches {
			_, _ = fmt.Fprintf(tw, "%s\t%d\n", st.Name, st.Seconds)
		}
	}
	return tw.Flush() //nolint:wrapcheck // stdout.
}

func newRoadmapCmd(opts *rootOptions) *cobra.Command {
	var dateFlag string
	roadmap := &cobra.Command{
		Use:   "roadmap",
		Short: "Print the weekly body weight and lift projection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.loadProfile()
			if err != nil {
				return err
			}
			if p.StartedAt.IsZero() {
				if p.StartedAt, err = opts.date(dateFlag); err != nil {
					return err
				}
			}
			points := coach.ProjectRoadmap(p)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), points)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal weight %.1f kg\n", coach.EstimateGoalWeight(p))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
			_, _ = fmt.Fprintln(tw, "WEEK\tDATE\tWEIGHT\tBENCH\tSQUAT\tDEAD")
			for _, pt := range points {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", pt.Week, pt.Date, pt.WeightKg,
					pt.BenchTarget, pt.SquatTarget, pt.DeadTarget)
			}
			return tw.Flush() //nolint:wrapcheck // stdout.
		},
	}
	roadmap.Flags().StringVar(&dateFlag, "date", "", "start date when the profile has none, today when empty")
	return roadmap
}

func formatKg(w *float64) string {
	if w == nil {
		return "-"
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", *w), ".0") + " kg"
}
