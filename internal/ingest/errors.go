package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidDocuments 表示请求解码后没有任何可用文档。
	ErrNoValidDocuments = errors.New("got zero objects")
	// ErrUnsupportedContentType 表示不支持的 Content-Type。
	ErrUnsupportedContentType = errors.New("unhandled content type")
	// ErrInvalidData 表示 JSON/表单请求体既不是带 destination 的对象也不是数组。
	ErrInvalidData = errors.New("invalid data")
	// ErrBodyTooLarge 表示请求体超过上限。
	ErrBodyTooLarge = errors.New("request entity too large")
	// ErrTooManyParts 表示 multipart 分段数超过上限。
	ErrTooManyParts = errors.New("too many parts")
)

// DecodeError 表示请求体无法按声明的类型解析，整个请求失败。
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrUnsupportedContentType) {
		return fmt.Sprintf("%v: %s", ErrUnsupportedContentType, e.ContentType)
	}
	return fmt.Sprintf("decode %q body: %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CommitError 表示至少一个目标集合写入失败，Cause 是按目标顺序遇到的第一个失败原因。
type CommitError struct {
	Destination string
	Cause       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit to %s failed: %v", e.Destination, e.Cause)
}

func (e *CommitError) Unwrap() error {
	return e.Cause
}
