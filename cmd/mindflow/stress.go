package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/records"
	"github.com/mindflow-app/mindflow-BE/internal/client/tracker"
)

func stressCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Stress check-ins",
	}
	cmd.AddCommand(stressLogCmd(g), stressListCmd(g), stressDeleteCmd(g), stressStatsCmd(g))
	return cmd
}

func stressLogCmd(g *globalFlags) *cobra.Command {
	var (
		level   int
		factors []string
		journal string
		date    string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a stress check-in",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			now := a.clock.Now()
			if date == "" {
				date = now.In(a.loc).Format(model.DayLayout)
			}
			e := model.StressEntry{
				Date:      date,
				Timestamp: now.UTC().Format(records.TimestampLayout),
				Level:     level,
				Factors:   factors,
				Journal:   journal,
			}
			userID, err := a.client.UserID(cmd.Context())
			if err != nil {
				return err
			}
			e.UserID = userID
			if err := e.Validate(); err != nil {
				return err
			}

			saved, err := a.stressT.Add(cmd.Context(), e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged stress entry %s (level %d)\n", saved.ID, saved.Level)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&level, "level", "l", 0, "stress level 1-10")
	cmd.Flags().StringSliceVarP(&factors, "factors", "f", nil, "contributing factors")
	cmd.Flags().StringVarP(&journal, "journal", "j", "", "journal note")
	cmd.Flags().StringVar(&date, "date", "", "day of the check-in, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func stressListCmd(g *globalFlags) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stress check-ins, newest first",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			entries, source := listStress(cmd, a, local)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tDATE\tLEVEL\tFACTORS\tJOURNAL\n")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", e.ID, e.Date, e.Level, strings.Join(e.Factors, ","), e.Journal)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d entries (%s)\n", len(entries), source)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&local, "local", false, "read the local copy only")
	return cmd
}

func stressDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stress check-in",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.stressT.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entry deleted: %s\n", args[0])
			return nil
		}),
	}
}

func stressStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stress statistics",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Check-ins:      %d\n", a.stress.TotalCount(ctx))
			if avg, ok := a.stress.AverageLevel(ctx); ok {
				fmt.Fprintf(out, "Average level:  %.1f\n", avg)
			} else {
				fmt.Fprintln(out, "Average level:  -")
			}
			fmt.Fprintf(out, "Streak:         %d days\n", a.stress.Streak(ctx))
			if last, ok := a.stress.LastCheckIn(ctx); ok {
				fmt.Fprintf(out, "Last check-in:  %s\n", last)
			} else {
				fmt.Fprintln(out, "Last check-in:  never")
			}
			return nil
		}),
	}
}

func listStress(cmd *cobra.Command, a *app, local bool) ([]model.StressEntry, tracker.Source) {
	if local {
		return a.stress.Recent(cmd.Context(), 0), tracker.SourceLocal
	}
	return a.stressT.Entries(cmd.Context())
}
