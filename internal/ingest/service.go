package ingest

import (
	"context"
	"io"
	"time"

	"fathomupload/internal/document"
	"fathomupload/internal/logging"
	"go.uber.org/zap"
)

const defaultCommitTimeout = 60 * time.Second

// Request 是一次上传请求的输入。
type Request struct {
	ContentType   string
	Body          io.Reader
	SourceAddress string
}

// Service 串联解码、校验、分组与写入。
type Service struct {
	decoder       *Decoder
	normalizer    *document.Normalizer
	coordinator   *Coordinator
	commitTimeout time.Duration
	logger        *zap.Logger
}

// NewService 创建上传服务。
func NewService(decoder *Decoder, normalizer *document.Normalizer, coordinator *Coordinator, commitTimeout time.Duration, logger *zap.Logger) *Service {
	if commitTimeout <= 0 {
		commitTimeout = defaultCommitTimeout
	}
	if normalizer == nil {
		normalizer = document.NewNormalizer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		decoder:       decoder,
		normalizer:    normalizer,
		coordinator:   coordinator,
		commitTimeout: commitTimeout,
		logger:        logger,
	}
}

// Ingest 处理一次上传。返回的错误为 *DecodeError、ErrNoValidDocuments 或 *CommitError。
//
// 解码阶段受 ctx 控制，客户端断开会中止解码；一旦开始写入，写入会脱离 ctx 的取消独立完成，
// 只受 commitTimeout 约束。
func (s *Service) Ingest(ctx context.Context, req Request) (Result, error) {
	logger := logging.FromContext(ctx, s.logger)
	logger.Debug("upload received",
		zap.String(logging.FieldSourceAddress, req.SourceAddress),
		zap.String(logging.FieldContentType, req.ContentType))

	batches, err := s.collect(ctx, req)
	if err != nil {
		logger.Warn("upload rejected", zap.String(logging.FieldContentType, req.ContentType), zap.Error(err))
		s.coordinator.RecordFailure(ctx)
		return Result{}, err
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.commitTimeout)
	defer cancel()
	res := s.coordinator.Commit(commitCtx, batches)
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

func (s *Service) collect(ctx context.Context, req Request) ([]Batch, error) {
	logger := logging.FromContext(ctx, s.logger)
	candidates, err := s.decoder.Decode(req.ContentType, req.Body)
	if err != nil {
		return nil, err
	}
	builder := NewBatchBuilder()
	rejected := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, &DecodeError{ContentType: req.ContentType, Err: err}
		}
		raw, err := candidates.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		doc, err := s.normalizer.Normalize(raw, req.SourceAddress)
		if err != nil {
			rejected++
			logger.Debug("invalid object", zap.Error(err))
			continue
		}
		builder.Add(doc)
	}
	batches, err := builder.Batches()
	if err != nil {
		return nil, err
	}
	logger.Debug("saving items", zap.Int(logging.FieldCount, builder.Len()), zap.Int("rejected", rejected))
	return batches, nil
}
