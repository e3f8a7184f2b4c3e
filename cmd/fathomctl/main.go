package main

import (
	"context"
	"fmt"
	"os"

	"fathomupload/internal/app"
	"fathomupload/ioc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "fathomctl",
	Short:         "Fathom upload 运维工具",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径，默认读取 FATHOM_CONFIG 或 configs/config.yaml")
}

func loadConfig() (app.Config, *zap.Logger, error) {
	cfg, err := ioc.InitConfig(ioc.ResolveConfigPath(configPath))
	if err != nil {
		return cfg, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := ioc.InitLogger(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
