package mongodb

import (
	"errors"
	"strings"

	"fathomupload/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB 服务端错误码。
const (
	codeDuplicateKey            = 11000
	codeDuplicateKeyLegacy      = 11001
	codeDuplicateKeyUpdate      = 12582
	codeDollarPrefixedFieldName = 52
	codeDottedFieldName         = 57
)

var invalidFieldMessages = []string{
	"must not contain",
	"can't have . in field names",
	"$ prefixed field",
	"dollar-prefixed field",
}

// classify 将驱动错误包装为 *store.InsertError。
// 批量写入时：全部为重复键 -> DuplicateKey；含非法字段名且其余均为重复键 -> InvalidFieldName；否则 Other。
func classify(err error) error {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil {
			return &store.InsertError{Class: store.ClassOther, Err: err}
		}
		writeErrs := make([]mongo.WriteError, 0, len(bwe.WriteErrors))
		for _, e := range bwe.WriteErrors {
			writeErrs = append(writeErrs, e.WriteError)
		}
		return &store.InsertError{Class: classifyWriteErrors(writeErrs), Err: err}
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		if we.WriteConcernError != nil {
			return &store.InsertError{Class: store.ClassOther, Err: err}
		}
		return &store.InsertError{Class: classifyWriteErrors(we.WriteErrors), Err: err}
	}

	// 驱动在客户端校验字段名时返回的是普通错误
	if isInvalidFieldName(0, err.Error()) {
		return &store.InsertError{Class: store.ClassInvalidFieldName, Err: err}
	}
	if mongo.IsDuplicateKeyError(err) {
		return &store.InsertError{Class: store.ClassDuplicateKey, Err: err}
	}
	return &store.InsertError{Class: store.ClassOther, Err: err}
}

func classifyWriteErrors(errs []mongo.WriteError) store.Class {
	if len(errs) == 0 {
		return store.ClassOther
	}
	class := store.ClassDuplicateKey
	for _, e := range errs {
		switch {
		case isInvalidFieldName(e.Code, e.Message):
			class = store.ClassInvalidFieldName
		case isDuplicateKey(e.Code):
		default:
			return store.ClassOther
		}
	}
	return class
}

// insertedOnError 估算失败时已写入的条数：无序写入下未出现在 WriteErrors 中的文档均已写入。
func insertedOnError(total int, err error) int {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		if n := total - len(bwe.WriteErrors); n > 0 {
			return n
		}
	}
	return 0
}

func isDuplicateKey(code int) bool {
	return code == codeDuplicateKey || code == codeDuplicateKeyLegacy || code == codeDuplicateKeyUpdate
}

func isInvalidFieldName(code int, message string) bool {
	if code == codeDollarPrefixedFieldName || code == codeDottedFieldName {
		return true
	}
	for _, m := range invalidFieldMessages {
		if strings.Contains(message, m) {
			return true
		}
	}
	return false
}
