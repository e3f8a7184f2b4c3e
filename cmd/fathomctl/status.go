package main

import (
	"context"
	"io"
	"sort"
	"time"

	"fathomupload/internal/stats"
	"fathomupload/ioc"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "输出 Redis 中的上传统计",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	s, cleanup, err := ioc.InitRedisStats(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer cleanup()
	return printStatus(cmd.Context(), cmd.OutOrStdout(), s, time.Now())
}

func printStatus(ctx context.Context, w io.Writer, snapshotter stats.Snapshotter, now time.Time) error {
	snap, err := snapshotter.Snapshot(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := io.WriteString(w, k+"\t"+snap[k]+"\n"); err != nil {
			return err
		}
	}
	if started, ok := stats.Started(snap); ok {
		_, err = io.WriteString(w, "uptime\t"+now.Sub(started).Round(time.Second).String()+"\n")
	}
	return err
}
