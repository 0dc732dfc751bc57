package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/client/outbox"
)

// snapshot 本地数据的完整导出
type snapshot struct {
	UserID        string                    `json:"userId"`
	Migrated      bool                      `json:"migrated"`
	Stress        []model.StressEntry       `json:"stress"`
	Breathing     []model.BreathingSession  `json:"breathing"`
	Meditation    []model.MeditationSession `json:"meditation"`
	VideoProgress map[string]float64        `json:"videoProgress"`
	Outbox        []outbox.Intent           `json:"outbox"`
	RemoteIDs     map[string]string         `json:"remoteIds"`
}

func exportCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all local data",
		RunE: withApp(g, func(cmd *cobra.Command, args []string, a *app) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}
			ctx := cmd.Context()
			userID, err := a.client.UserID(ctx)
			if err != nil {
				return err
			}
			migrated, err := a.migrator.Done(ctx)
			if err != nil {
				return err
			}
			queue, err := a.box.Pending(ctx)
			if err != nil {
				return err
			}
			remote, err := a.box.RemoteIDs(ctx)
			if err != nil {
				return err
			}
			snap := snapshot{
				UserID:        userID,
				Migrated:      migrated,
				Stress:        a.stress.Recent(ctx, 0),
				Breathing:     a.breathing.Recent(ctx, 0),
				Meditation:    a.meditation.Recent(ctx, 0),
				VideoProgress: a.video.All(ctx),
				Outbox:        queue,
				RemoteIDs:     remote,
			}
			return writeSnapshot(cmd.OutOrStdout(), format, snap)
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// writeSnapshot yaml 输出沿用 JSON 字段名，先转成通用结构再编码
func writeSnapshot(w io.Writer, format string, snap snapshot) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
