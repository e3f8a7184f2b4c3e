package ioc

import (
	"context"
	"fmt"

	"fathomupload/internal/app"
	"fathomupload/internal/metrics"
	"fathomupload/internal/stats"
	"fathomupload/internal/stats/redisstats"
	"fathomupload/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// InitRedisStats 连接 Redis 统计哈希。reset 为 true 时重置计数并记录启动时间。
func InitRedisStats(ctx context.Context, cfg app.Config, logger *zap.Logger, reset bool) (*redisstats.Stats, func(), error) {
	var s *redisstats.Stats
	err := util.Retry(ctx, connectAttempts, connectBackoff, func() error {
		var err error
		s, err = redisstats.New(ctx, redisstats.Config{
			Addr:      cfg.RedisAddr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Key:       cfg.Redis.Key,
			OpTimeout: cfg.RedisOpTimeout(),
		}, logger)
		if err != nil {
			logger.Warn("redis connect failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("连接 redis 失败: %w", err)
	}
	if reset {
		if err := s.Reset(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("重置统计失败: %w", err)
		}
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Warn("close redis failed", zap.Error(err))
		}
	}
	return s, cleanup, nil
}

// InitServerStats 为 HTTP 服务构建统计，启动时重置计数。
func InitServerStats(ctx context.Context, cfg app.Config, logger *zap.Logger) (*redisstats.Stats, func(), error) {
	return InitRedisStats(ctx, cfg, logger, true)
}

// InitMetrics 在默认 Registerer 上注册指标。
func InitMetrics() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// InitGatherer 返回 /metrics 使用的 Gatherer。
func InitGatherer() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}

// InitReporter 将上传计数同时写入 Redis 与 Prometheus。
func InitReporter(redis *redisstats.Stats, m *metrics.Metrics) stats.Reporter {
	return stats.Multi{redis, m}
}

// InitSnapshotter 返回 /status 与心跳使用的快照来源。
func InitSnapshotter(redis *redisstats.Stats) stats.Snapshotter {
	return redis
}
