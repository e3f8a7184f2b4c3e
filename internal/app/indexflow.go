package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fathomupload/internal/store"
	"go.uber.org/zap"
)

// IndexFlow 为目标集合创建 (uuid, objectId) 唯一索引与 uuid 索引。
type IndexFlow struct {
	Store        store.IndexEnsurer
	Destinations []string
	Logger       *zap.Logger
}

// Run 执行索引创建，已存在的索引不会报错。
func (f *IndexFlow) Run(ctx context.Context) error {
	if f.Store == nil {
		return fmt.Errorf("索引依赖未注入完整")
	}
	if f.Logger == nil {
		f.Logger = zap.NewNop()
	}
	destinations := make([]string, 0, len(f.Destinations))
	seen := make(map[string]struct{}, len(f.Destinations))
	for _, d := range f.Destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		destinations = append(destinations, d)
	}
	if len(destinations) == 0 {
		f.Logger.Info("no destinations configured, skip index creation")
		return nil
	}

	start := time.Now()
	if err := f.Store.EnsureIndexes(ctx, destinations); err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	f.Logger.Info("indexes ensured", zap.Strings("destinations", destinations), zap.Duration("duration", time.Since(start)))
	return nil
}
