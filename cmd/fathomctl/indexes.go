package main

import (
	"fathomupload/ioc"
	"github.com/spf13/cobra"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes [destination...]",
	Short: "为目标集合创建 (uuid, objectId) 唯一索引",
	Long: `为配置中的目标集合创建 (uuid, objectId) 唯一索引和 uuid 索引。
传入参数时只处理参数中的目标集合。`,
	RunE: runEnsureIndexes,
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
}

func runEnsureIndexes(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if len(args) > 0 {
		cfg.Indexes.Destinations = args
	}

	ctx := cmd.Context()
	s, cleanup, err := ioc.InitStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := ioc.InitIndexFlow(cfg, s, logger).Run(ctx); err != nil {
		return err
	}
	cmd.Printf("indexes ensured for %d destinations\n", len(cfg.Indexes.Destinations))
	return nil
}
