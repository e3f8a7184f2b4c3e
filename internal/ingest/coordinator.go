package ingest

import (
	"context"
	"time"

	"fathomupload/internal/document"
	"fathomupload/internal/logging"
	"fathomupload/internal/stats"
	"fathomupload/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelDestinations = 4
	statsTimeout                = 2 * time.Second
)

// Coordinator 按目标集合执行写入协议：重复键视为成功，非法字段名清洗后重试一次。
type Coordinator struct {
	store    store.Inserter
	reporter stats.Reporter
	parallel int
	logger   *zap.Logger
}

// NewCoordinator 创建写入协调器，parallel 限制同一请求内并发写入的目标集合数。
func NewCoordinator(inserter store.Inserter, reporter stats.Reporter, parallel int, logger *zap.Logger) *Coordinator {
	if parallel <= 0 {
		parallel = defaultParallelDestinations
	}
	if reporter == nil {
		reporter = stats.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: inserter, reporter: reporter, parallel: parallel, logger: logger}
}

// Commit 并发写入所有批次并等待全部结束后汇总。失败的目标集合不会阻止其余集合写入。
// 每个请求只上报一次统计：成功时累加文档数，失败时错误数加一。
func (c *Coordinator) Commit(ctx context.Context, batches []Batch) Result {
	outcomes := make([]Outcome, len(batches))
	var g errgroup.Group
	g.SetLimit(c.parallel)
	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			start := time.Now()
			outcomes[i] = c.commitOne(ctx, b)
			c.logOutcome(ctx, outcomes[i], time.Since(start))
			return nil
		})
	}
	_ = g.Wait()

	res := aggregate(outcomes)
	logger := logging.FromContext(ctx, c.logger)
	if res.Success() {
		logger.Debug("commit completed", zap.Int(logging.FieldCount, res.Total), zap.Int("destinations", len(batches)))
		c.reportUpload(ctx, res.Total)
	} else {
		logger.Error("commit failed", zap.String(logging.FieldDestination, res.Err.Destination), zap.Error(res.Err.Cause))
		c.RecordFailure(ctx)
	}
	return res
}

func (c *Coordinator) commitOne(ctx context.Context, b Batch) Outcome {
	logger := logging.FromContext(ctx, c.logger).With(
		zap.String(logging.FieldDestination, b.Destination),
		zap.Int(logging.FieldCount, len(b.Documents)))
	out := Outcome{Destination: b.Destination, Count: len(b.Documents)}

	inserted, err := c.store.InsertBatch(ctx, b.Destination, b.Documents)
	out.Inserted = inserted
	if err == nil {
		logger.Debug("batch inserted", zap.Int(logging.FieldInserted, inserted))
		out.State = StateCommitted
		return out
	}

	switch store.Classify(err) {
	case store.ClassDuplicateKey:
		// 客户端重传导致的重复上传
		logger.Info("duplicate documents ignored", zap.Int(logging.FieldInserted, inserted), zap.Error(err))
		out.State = StateCommitted
		return out
	case store.ClassInvalidFieldName:
		logger.Warn("invalid field names, retry with sanitized keys", zap.Error(err))
	default:
		logger.Error("insert batch failed", zap.Error(err))
		out.State = StateFailed
		out.Err = err
		return out
	}

	out.Retried = true
	inserted, err = c.store.InsertBatch(ctx, b.Destination, document.SanitizeAll(b.Documents))
	out.Inserted += inserted
	switch {
	case err == nil:
		logger.Info("sanitized batch inserted", zap.Int(logging.FieldInserted, inserted))
		out.State = StatePartiallyRecovered
	case store.Classify(err) == store.ClassDuplicateKey:
		logger.Info("duplicate documents ignored after sanitize", zap.Int(logging.FieldInserted, inserted), zap.Error(err))
		out.State = StatePartiallyRecovered
	default:
		logger.Error("insert sanitized batch failed", zap.Error(err))
		out.State = StateFailed
		out.Err = err
	}
	return out
}

func (c *Coordinator) logOutcome(ctx context.Context, o Outcome, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String(logging.FieldDestination, o.Destination),
		zap.Stringer(logging.FieldState, o.State),
		zap.Int(logging.FieldCount, o.Count),
		zap.Int(logging.FieldInserted, o.Inserted),
		zap.Bool("retried", o.Retried),
		zap.Duration(logging.FieldDuration, elapsed),
	}
	logger := logging.FromContext(ctx, c.logger)
	if o.Err != nil {
		fields = append(fields, zap.Stringer(logging.FieldErrorClass, store.Classify(o.Err)))
		logger.Warn("destination outcome", fields...)
		return
	}
	logger.Debug("destination outcome", fields...)
}

// RecordFailure 为失败请求累加错误计数，统计层的错误只记录日志。
func (c *Coordinator) RecordFailure(ctx context.Context) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsTimeout)
	defer cancel()
	if err := c.reporter.IncrementError(sctx); err != nil {
		logging.FromContext(ctx, c.logger).Warn("report error stats failed", zap.Error(err))
	}
}

func (c *Coordinator) reportUpload(ctx context.Context, count int) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsTimeout)
	defer cancel()
	if err := c.reporter.IncrementUpload(sctx, count); err != nil {
		logging.FromContext(ctx, c.logger).Warn("report upload stats failed", zap.Error(err))
	}
}
