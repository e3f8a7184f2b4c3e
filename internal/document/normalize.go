package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrRejected 表示候选文档缺少必填字段。
var ErrRejected = errors.New("document rejected")

// RejectedError 记录被拒绝的原因。
type RejectedError struct {
	Field string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("document rejected: missing %s", e.Field)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Normalizer 校验候选文档并补充入库元数据。
type Normalizer struct {
	Now func() time.Time
}

// NewNormalizer 返回使用真实时钟的 Normalizer。
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize 将原始对象转换为 Normalized；缺少 destination、uuid 或 objectId 时返回 *RejectedError。
// raw 本身不会被修改。
func (n *Normalizer) Normalize(raw map[string]any, sourceAddress string) (Normalized, error) {
	destination, ok := raw[FieldDestination].(string)
	if !ok || destination == "" {
		return Normalized{}, &RejectedError{Field: FieldDestination}
	}
	if !present(raw[FieldUUID]) {
		return Normalized{}, &RejectedError{Field: FieldUUID}
	}
	if !present(raw[FieldObjectID]) {
		return Normalized{}, &RejectedError{Field: FieldObjectID}
	}

	payload := make(Document, len(raw)+1)
	for k, v := range raw {
		if k == FieldDestination {
			continue
		}
		payload[k] = v
	}
	for _, field := range TimestampFields {
		v, exists := payload[field]
		if !exists {
			continue
		}
		if ts, ok := CoerceTimestamp(v); ok {
			payload[field] = ts
		}
	}

	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	payload[FieldIngestion] = map[string]any{
		FieldReceivedAt:    now().UTC(),
		FieldSourceAddress: sourceAddress,
	}
	return Normalized{Destination: destination, Payload: payload}, nil
}

// CoerceTimestamp 将毫秒时间戳或 ISO 8601 字符串转换为 time.Time，无法识别时返回 false。
func CoerceTimestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case float64:
		return fromMillis(val)
	case int:
		return fromMillisInt(int64(val))
	case int64:
		return fromMillisInt(val)
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			return fromMillisInt(ms)
		}
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	case string:
		return parseTimestamp(val)
	default:
		return time.Time{}, false
	}
}

// maxEpochMillis 是可表示的最大毫秒时间戳（±100,000,000 天），超出范围的值视为无效。
const maxEpochMillis = 8.64e15

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMicro(int64(ms * 1000)).UTC(), true
}

func fromMillisInt(ms int64) (time.Time, bool) {
	if ms > maxEpochMillis || ms < -maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillisInt(ms)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// present 判断必填字段是否有值，空字符串、0、false 与 nil 视为缺失。
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case int:
		return val != 0
	case int64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return val != "" && (err != nil || f != 0)
	default:
		return true
	}
}
