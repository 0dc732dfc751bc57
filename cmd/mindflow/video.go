package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
)

func videoProgressCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video-progress",
		Short: "Saved playback position of exercise videos",
	}
	cmd.AddCommand(videoGetCmd(g), videoSetCmd(g))
	return cmd
}

func videoGetCmd(g *globalFlags) *cobra.Command {
	var length float64
	cmd := &cobra.Command{
		Use:   "get [exercise-id]",
		Short: "Show saved positions, or where to resume one video",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				all := a.video.All(cmd.Context())
				for _, id := range slices.Sorted(maps.Keys(all)) {
					fmt.Fprintf(out, "%s\t%.0fs\n", id, all[id])
				}
				return nil
			}
			id := args[0]
			if length > 0 {
				fmt.Fprintf(out, "%s: resume at %.0fs\n", id, a.video.ResumeAt(cmd.Context(), id, length))
				return nil
			}
			fmt.Fprintf(out, "%s: %.0fs\n", id, a.video.Get(cmd.Context(), id))
			return nil
		}),
	}
	cmd.Flags().Float64Var(&length, "length", 0, "video length in seconds; prints the resume position")
	return cmd
}

func videoSetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <exercise-id> <seconds>",
		Short: "Save the playback position of a video",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			sec, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid seconds %q: %w", args[1], err)
			}
			saved, err := a.video.Set(cmd.Context(), args[0], sec)
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: position under 5s not saved\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: saved at %.0fs\n", args[0], sec)
			return nil
		}),
	}
}
