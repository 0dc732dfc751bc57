package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func syncCmd(g *globalFlags) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the API",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				a.log.Info("syncing until interrupted", "interval", a.cfg.SyncInterval.String())
				return a.syncer.Run(ctx, a.cfg.SyncInterval.Duration)
			}
			res, err := a.syncer.Drain(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d, failed %d, skipped %d, %d still queued\n",
				res.Sent, res.Failed, res.Skipped, res.Remaining)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep syncing every sync_interval")
	return cmd
}

func migrateCmd(g *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upload local history to the API once",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			// outbox 里已经跟踪过的记录再迁移一次会在服务端重复
			if !force {
				pending, err := a.box.Len(ctx)
				if err != nil {
					return err
				}
				synced, err := a.box.RemoteIDs(ctx)
				if err != nil {
					return err
				}
				if done, _ := a.migrator.Done(ctx); !done && (pending > 0 || len(synced) > 0) {
					return fmt.Errorf("local records are already synced through the outbox; use --force to upload everything anyway")
				}
			}

			report, err := a.migrator.Run(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.AlreadyCompleted {
				fmt.Fprintln(out, "Migration already completed")
				return nil
			}
			for _, k := range report.Kinds {
				fmt.Fprintf(out, "%-11s attempted %d, failed %d\n", k.Kind, k.Attempted, k.Failed)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&force, "force", false, "migrate even if records were synced through the outbox")
	return cmd
}

func statusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show API and local sync status",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			userID, err := a.client.UserID(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "API:        %s\n", a.cfg.APIURL)
			if st, err := a.client.Status(ctx); err != nil {
				fmt.Fprintf(out, "Server:     unreachable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "Server:     %s\n", st.Server)
				fmt.Fprintf(out, "Database:   %s\n", st.MongoDBConnection)
			}
			fmt.Fprintf(out, "User:       %s\n", userID)
			fmt.Fprintf(out, "Local DB:   %s\n", a.cfg.DBPath())

			pending, err := a.box.Len(ctx)
			if err != nil {
				return err
			}
			migrated, err := a.migrator.Done(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Queued:     %d\n", pending)
			fmt.Fprintf(out, "Migrated:   %t\n", migrated)
			return nil
		}),
	}
}
