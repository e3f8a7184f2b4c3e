package redisstats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fathomupload/internal/stats"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKey       = "fathomupload"
	defaultOpTimeout = 250 * time.Millisecond
)

// Config 控制 Redis 连接参数。
type Config struct {
	Addr      string
	Password  string
	DB        int
	Key       string
	OpTimeout time.Duration
}

// Stats 将运行时计数写入 Redis 哈希。
type Stats struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

var (
	_ stats.Reporter    = (*Stats)(nil)
	_ stats.Snapshotter = (*Stats)(nil)
)

// New 建立连接并 Ping，失败时关闭连接。
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Stats, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr 不能为空")
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis 无法连通: %w", err)
	}
	return NewWithClient(client, cfg.Key, cfg.OpTimeout, logger), nil
}

// NewWithClient 使用已有的 client 构建 Stats。
func NewWithClient(client *redis.Client, key string, opTimeout time.Duration, logger *zap.Logger) *Stats {
	if key == "" {
		key = defaultKey
	}
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stats{client: client, key: key, timeout: opTimeout, now: time.Now, logger: logger}
}

// Reset 在启动时重置计数并记录启动时间。
func (s *Stats) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.HSet(ctx, s.key, map[string]any{
		stats.FieldStart:      s.now().UTC().Format(time.RFC3339),
		stats.FieldUploadCnt:  0,
		stats.FieldLastUpload: 0,
		stats.FieldErrorCnt:   0,
		stats.FieldLastError:  0,
	}).Err()
}

// IncrementUpload 累加上传文档数并更新最近上传时间。
func (s *Stats) IncrementUpload(ctx context.Context, count int) error {
	return s.increment(ctx, stats.FieldLastUpload, stats.FieldUploadCnt, int64(count))
}

// IncrementError 错误数加一并更新最近错误时间。
func (s *Stats) IncrementError(ctx context.Context) error {
	return s.increment(ctx, stats.FieldLastError, stats.FieldErrorCnt, 1)
}

func (s *Stats) increment(ctx context.Context, tsField, cntField string, n int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, tsField, s.now().UTC().Format(time.RFC3339))
		pipe.HIncrBy(ctx, s.key, cntField, n)
		return nil
	})
	if err != nil {
		s.logger.Debug("redis stats error", zap.String("field", cntField), zap.Error(err))
		return fmt.Errorf("redis stats %s: %w", cntField, err)
	}
	return nil
}

// Snapshot 返回统计哈希的全部字段。
func (s *Stats) Snapshot(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.HGetAll(ctx, s.key).Result()
}

// Close 关闭连接。
func (s *Stats) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
