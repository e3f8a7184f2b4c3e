package stats

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// 统计快照中的字段。
const (
	FieldStart      = "start"
	FieldUploadCnt  = "uploadcnt"
	FieldLastUpload = "lastupload"
	FieldErrorCnt   = "errorcnt"
	FieldLastError  = "lasterror"
)

// Reporter 上报运行时计数，调用方忽略其错误。
type Reporter interface {
	IncrementUpload(ctx context.Context, count int) error
	IncrementError(ctx context.Context) error
}

// Snapshotter 读取当前计数快照。
type Snapshotter interface {
	Snapshot(ctx context.Context) (map[string]string, error)
}

// Nop 丢弃所有上报。
type Nop struct{}

func (Nop) IncrementUpload(context.Context, int) error { return nil }
func (Nop) IncrementError(context.Context) error       { return nil }

// Multi 将上报扇出到多个 Reporter，所有 Reporter 都会被调用。
type Multi []Reporter

func (m Multi) IncrementUpload(ctx context.Context, count int) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.IncrementUpload(ctx, count); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) IncrementError(ctx context.Context) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.IncrementError(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Started 解析快照中的启动时间，支持 RFC3339 与毫秒时间戳。
func Started(snapshot map[string]string) (time.Time, bool) {
	raw, ok := snapshot[FieldStart]
	if !ok {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}
