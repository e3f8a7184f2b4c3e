package store

import (
	"context"
	"errors"
	"fmt"

	"fathomupload/internal/document"
)

// Class 是持久化错误的分类。
type Class int

const (
	ClassOther Class = iota
	ClassDuplicateKey
	ClassInvalidFieldName
)

func (c Class) String() string {
	switch c {
	case ClassDuplicateKey:
		return "duplicate_key"
	case ClassInvalidFieldName:
		return "invalid_field_name"
	default:
		return "other"
	}
}

// InsertError 由各存储实现返回，携带已分类的错误。
type InsertError struct {
	Class Class
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert failed (%s): %v", e.Class, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// Classify 返回 err 的分类，未包装为 *InsertError 的错误一律视为 ClassOther。
func Classify(err error) Class {
	var ie *InsertError
	if errors.As(err, &ie) {
		return ie.Class
	}
	return ClassOther
}

// Inserter 按目标集合批量写入文档，返回实际写入的条数。
type Inserter interface {
	InsertBatch(ctx context.Context, destination string, docs []document.Document) (int, error)
}

// IndexEnsurer 为目标集合建立 (uuid, objectId) 唯一索引及 uuid 索引。
type IndexEnsurer interface {
	EnsureIndexes(ctx context.Context, destinations []string) error
}

// Store 是一个完整的存储后端。
type Store interface {
	Inserter
	IndexEnsurer
	Close(ctx context.Context) error
}
