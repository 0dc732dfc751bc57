package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/outbox"
	"github.com/mindflow-app/mindflow-BE/internal/client/records"
	"github.com/mindflow-app/mindflow-BE/internal/client/tracker"
)

func meditationCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meditation",
		Short: "Meditation sessions",
	}
	cmd.AddCommand(
		meditationCompleteCmd(g),
		meditationListCmd(g),
		meditationDeleteCmd(g),
		meditationClearCmd(g),
		meditationStatsCmd(g),
	)
	return cmd
}

func meditationCompleteCmd(g *globalFlags) *cobra.Command {
	var (
		t       model.Technique
		seconds int
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Record a completed meditation",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if seconds < 0 {
				return fmt.Errorf("seconds must not be negative")
			}
			s, err := a.meditation.SaveCompleted(cmd.Context(), t, seconds)
			if err != nil {
				return err
			}
			if err := a.meditationT.Track(cmd.Context(), outbox.OpCreate, s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved meditation %s (%s, %ds)\n", s.ID, s.Technique.Title, s.Duration)
			return nil
		}),
	}
	cmd.Flags().StringVar(&t.ID, "technique-id", "", "technique id")
	cmd.Flags().StringVar(&t.Title, "title", "", "technique title")
	cmd.Flags().StringVar(&t.Category, "category", "", "technique category")
	cmd.Flags().StringVar(&t.Image, "image", "", "technique image path")
	cmd.Flags().IntVarP(&seconds, "seconds", "s", 0, "session length in seconds")
	_ = cmd.MarkFlagRequired("seconds")
	return cmd
}

func meditationListCmd(g *globalFlags) *cobra.Command {
	var (
		local  bool
		recent int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meditation sessions, newest first",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			var (
				sessions []model.MeditationSession
				source   tracker.Source
			)
			if local || recent > 0 {
				sessions, source = a.meditation.Recent(cmd.Context(), recent), tracker.SourceLocal
			} else {
				sessions, source = a.meditationT.Entries(cmd.Context())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tCOMPLETED AT\tTECHNIQUE\tDURATION\n")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%ds\n", s.ID, s.CompletedAt, s.Technique.Title, s.Duration)
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
	return cmd
}

func meditationDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a meditation session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.meditationT.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session deleted: %s\n", args[0])
			return nil
		}),
	}
}

// 只清本地历史，不会删除服务端记录
func meditationClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the local meditation history",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.meditation.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local meditation history cleared")
			return nil
		}),
	}
}

func meditationStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show meditation statistics",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sessions:       %d\n", a.meditation.TotalCount(ctx))
			fmt.Fprintf(out, "Streak:         %d days\n", a.meditation.Streak(ctx))
			fmt.Fprintf(out, "Total minutes:  %d\n", a.meditation.TotalMinutes(ctx))
			printPracticed(out, a.meditation.MostPracticed(ctx))
			return nil
		}),
	}
}

func printPracticed(w io.Writer, p *records.Practiced) {
	if p == nil {
		fmt.Fprintln(w, "Most practiced: -")
		return
	}
	fmt.Fprintf(w, "Most practiced: %s (%d times)\n", p.Name, p.Count)
}
