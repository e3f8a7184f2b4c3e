package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"fathomupload/internal/document"
	"go.uber.org/zap"
)

const (
	defaultMaxBodyBytes = 100 << 20
	defaultMaxParts     = 10000
	logSampleBytes      = 256
)

// Candidates 是一次性、惰性的原始文档序列，结束时 Next 返回 io.EOF。
type Candidates interface {
	Next() (map[string]any, error)
}

// Decoder 将三种请求体编码统一解析为原始文档序列。
type Decoder struct {
	maxBodyBytes int64
	maxParts     int
	logger       *zap.Logger
}

// NewDecoder 创建解码器，非正数参数使用默认上限。
func NewDecoder(maxBodyBytes int64, maxParts int, logger *zap.Logger) *Decoder {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	if maxParts <= 0 {
		maxParts = defaultMaxParts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{maxBodyBytes: maxBodyBytes, maxParts: maxParts, logger: logger}
}

// Decode 根据 Content-Type 选择解析方式。JSON 与表单请求体会被一次性读入并校验形状，
// multipart 请求体按分段流式读取。
func (d *Decoder) Decode(contentType string, body io.Reader) (Candidates, error) {
	ct := strings.ToLower(contentType)
	limited := http.MaxBytesReader(nil, io.NopCloser(body), d.maxBodyBytes)
	switch {
	case strings.Contains(ct, "multipart/form-data"):
		return d.decodeMultipart(contentType, limited)
	case strings.Contains(ct, "application/x-www-form-urlencoded"):
		return d.decodeForm(contentType, limited)
	case strings.Contains(ct, "json"):
		return d.decodeJSON(contentType, limited)
	default:
		return nil, &DecodeError{ContentType: contentType, Err: ErrUnsupportedContentType}
	}
}

func (d *Decoder) decodeMultipart(contentType string, body io.Reader) (Candidates, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, &DecodeError{ContentType: contentType, Err: err}
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, &DecodeError{ContentType: contentType, Err: errors.New("missing multipart boundary")}
	}
	return &multipartCandidates{
		reader:      multipart.NewReader(body, boundary),
		contentType: contentType,
		maxParts:    d.maxParts,
		logger:      d.logger,
	}, nil
}

func (d *Decoder) decodeJSON(contentType string, body io.Reader) (Candidates, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, decodeErr(contentType, err)
	}
	var payload any
	if err := unmarshalJSON(data, &payload); err != nil {
		d.logger.Debug("invalid json body", zap.Int("size", len(data)), zap.Error(err))
		return nil, &DecodeError{ContentType: contentType, Err: fmt.Errorf("%w: %v", ErrInvalidData, err)}
	}
	return d.shape(contentType, payload)
}

func (d *Decoder) decodeForm(contentType string, body io.Reader) (Candidates, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, decodeErr(contentType, err)
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, &DecodeError{ContentType: contentType, Err: fmt.Errorf("%w: %v", ErrInvalidData, err)}
	}
	obj := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			obj[key] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		obj[key] = list
	}
	return d.shape(contentType, obj)
}

// shape 只接受带 destination 的单个对象或对象数组。
func (d *Decoder) shape(contentType string, payload any) (Candidates, error) {
	switch val := payload.(type) {
	case map[string]any:
		if !hasDestination(val) {
			d.logger.Debug("invalid request body", zap.String("content_type", contentType))
			return nil, &DecodeError{ContentType: contentType, Err: ErrInvalidData}
		}
		return &sliceCandidates{items: []map[string]any{val}}, nil
	case []any:
		items := make([]map[string]any, 0, len(val))
		for i, item := range val {
			obj, ok := item.(map[string]any)
			if !ok {
				d.logger.Debug("drop non-object array element", zap.Int("index", i))
				continue
			}
			items = append(items, obj)
		}
		return &sliceCandidates{items: items}, nil
	default:
		d.logger.Debug("invalid request body", zap.String("content_type", contentType))
		return nil, &DecodeError{ContentType: contentType, Err: ErrInvalidData}
	}
}

type sliceCandidates struct {
	items []map[string]any
	pos   int
}

func (s *sliceCandidates) Next() (map[string]any, error) {
	if s.pos >= len(s.items) {
		return nil, io.EOF
	}
	item := s.items[s.pos]
	s.items[s.pos] = nil
	s.pos++
	return item, nil
}

type multipartCandidates struct {
	reader      *multipart.Reader
	contentType string
	maxParts    int
	parts       int
	logger      *zap.Logger
}

// Next 读取下一个有效分段；无法解析或缺少 destination 的分段会被丢弃。
func (m *multipartCandidates) Next() (map[string]any, error) {
	for {
		part, err := m.reader.NextPart()
		// 截断的请求体返回包装过的 io.EOF，只有干净结束时才是 io.EOF 本身
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, decodeErr(m.contentType, err)
		}
		m.parts++
		if m.parts > m.maxParts {
			_ = part.Close()
			return nil, &DecodeError{ContentType: m.contentType, Err: ErrTooManyParts}
		}
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, decodeErr(m.contentType, err)
		}
		var obj map[string]any
		if err := unmarshalJSON(data, &obj); err != nil || !hasDestination(obj) {
			m.logger.Debug("drop invalid part",
				zap.Int("part", m.parts),
				zap.String("form_name", part.FormName()),
				zap.ByteString("data", sample(data)))
			continue
		}
		return obj, nil
	}
}

func hasDestination(obj map[string]any) bool {
	if obj == nil {
		return false
	}
	switch v := obj[document.FieldDestination].(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

var errTrailingData = errors.New("unexpected data after top-level value")

// unmarshalJSON 解析单个 JSON 值，数字保留为 json.Number，避免超过 2^53 的整数丢失精度。
func unmarshalJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

func decodeErr(contentType string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
	}
	return &DecodeError{ContentType: contentType, Err: err}
}

func sample(data []byte) []byte {
	if len(data) > logSampleBytes {
		return data[:logSampleBytes]
	}
	return data
}
