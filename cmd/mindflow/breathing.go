package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/outbox"
	"github.com/mindflow-app/mindflow-BE/internal/client/tracker"
)

func breathingCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breathing",
		Short: "Breathing exercise sessions",
	}
	cmd.AddCommand(
		breathingStartCmd(g),
		breathingCompleteCmd(g),
		breathingListCmd(g),
		breathingDeleteCmd(g),
		breathingStatsCmd(g),
	)
	return cmd
}

func breathingStartCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start <exercise-id> <exercise-name>",
		Short: "Record the start of a breathing exercise",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			s, err := a.breathing.Start(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.breathingT.Track(cmd.Context(), outbox.OpCreate, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started session %s\n", s.ID)
			return nil
		}),
	}
}

func breathingCompleteCmd(g *globalFlags) *cobra.Command {
	var seconds int
	cmd := &cobra.Command{
		Use:   "complete <session-id>",
		Short: "Mark a breathing session as completed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if seconds < 0 {
				return fmt.Errorf("seconds must not be negative")
			}
			s, err := a.breathing.Complete(cmd.Context(), args[0], seconds)
			if err != nil {
				return err
			}
			if err := a.breathingT.Track(cmd.Context(), outbox.OpUpdate, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed session %s (%ds)\n", s.ID, s.Duration)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 0, "session length in seconds")
	_ = cmd.MarkFlagRequired("seconds")
	return cmd
}

func breathingListCmd(g *globalFlags) *cobra.Command {
	var (
		local  bool
		recent int
		from   string
		to     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List breathing sessions, newest first",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			var (
				sessions []model.BreathingSession
				source   tracker.Source
			)
			switch {
			case from != "" || to != "":
				start, end, err := dateRange(from, to, a)
				if err != nil {
					return err
				}
				sessions, source = a.breathing.ByDateRange(ctx, start, end), tracker.SourceLocal
			case local || recent > 0:
				sessions, source = a.breathing.Recent(ctx, recent), tracker.SourceLocal
			default:
				sessions, source = a.breathingT.Entries(ctx)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tDATE\tEXERCISE\tDURATION\tCOMPLETED\n")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%ds\t%t\n", s.ID, s.Date, s.ExerciseName, s.Duration, s.Completed)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d sessions (%s)\n", len(sessions), source)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&local, "local", false, "read the local copy only")
	cmd.Flags().IntVarP(&recent, "recent", "n", 0, "only the n most recent local sessions")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (local copy)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (local copy)")
	return cmd
}

// dateRange 缺省的起点是很久以前，终点是今天
func dateRange(from, to string, a *app) (time.Time, time.Time, error) {
	start := time.Time{}
	end := a.clock.Now()
	var err error
	if from != "" {
		if start, err = time.ParseInLocation(model.DayLayout, from, a.loc); err != nil {
			return start, end, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(model.DayLayout, to, a.loc); err != nil {
			return start, end, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return start, end, nil
}

func breathingDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a breathing session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.breathingT.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session deleted: %s\n", args[0])
			return nil
		}),
	}
}

func breathingStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show breathing statistics",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Completed:      %d\n", a.breathing.TotalCompleted(ctx))
			fmt.Fprintf(out, "Streak:         %d days\n", a.breathing.Streak(ctx))
			fmt.Fprintf(out, "Total minutes:  %d\n", a.breathing.TotalMinutes(ctx))
			printPracticed(out, a.breathing.MostPracticed(ctx))
			return nil
		}),
	}
}
