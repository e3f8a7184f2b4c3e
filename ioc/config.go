package ioc

import (
	"os"
	"strings"

	"fathomupload/internal/app"
)

// DefaultConfigPath 是未指定 -config 与 FATHOM_CONFIG 时使用的配置文件。
const DefaultConfigPath = "configs/config.yaml"

// ConfigPath 是配置文件路径。
type ConfigPath string

// ResolveConfigPath 依次使用命令行参数、FATHOM_CONFIG 与默认路径。
func ResolveConfigPath(flagValue string) ConfigPath {
	if p := strings.TrimSpace(flagValue); p != "" {
		return ConfigPath(p)
	}
	if p := strings.TrimSpace(os.Getenv("FATHOM_CONFIG")); p != "" {
		return ConfigPath(p)
	}
	return DefaultConfigPath
}

// InitConfig 读取应用配置。
func InitConfig(path ConfigPath) (app.Config, error) {
	return app.LoadConfig(string(path))
}
