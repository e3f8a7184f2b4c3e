package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fathomupload/internal/cypher"
	"fathomupload/internal/document"
	"fathomupload/internal/store"
	"fathomupload/pkg/util"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

const (
	codeConstraintValidationFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"
	codeTokenNameError             = "Neo.ClientError.Schema.TokenNameError"
)

// InsertBatch 以 (uuid, objectId) 为键 MERGE 节点，已存在的节点不会被改写，
// 按 batchSize 分块写入。存在已存在的节点时返回 DuplicateKey 分类的错误。
func (c *Client) InsertBatch(ctx context.Context, destination string, docs []document.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	query := cypher.MustTemplate(cypher.InsertDocuments, map[string]string{"Label": LabelPattern(destination)})

	inserted := 0
	for _, chunk := range util.Batch(docs, c.batchSize) {
		created, err := c.runWrite(ctx, query, map[string]any{"rows": toRows(chunk)})
		if err != nil {
			return inserted, classify(fmt.Errorf("写入文档失败 label=%s: %w", destination, err))
		}
		inserted += created
	}
	if dup := len(docs) - inserted; dup > 0 {
		c.logger.Debug("existing documents skipped", zap.String("destination", destination), zap.Int("count", dup))
		return inserted, &store.InsertError{
			Class: store.ClassDuplicateKey,
			Err:   fmt.Errorf("%d documents already exist in %s", dup, destination),
		}
	}
	return inserted, nil
}

func toRows(docs []document.Document) []map[string]any {
	rows := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		props := Properties(doc)
		uuid := identityValue(doc[document.FieldUUID])
		objectID := identityValue(doc[document.FieldObjectID])
		dropNested(props, document.FieldUUID)
		dropNested(props, document.FieldObjectID)
		props[document.FieldUUID] = uuid
		props[document.FieldObjectID] = objectID
		rows = append(rows, map[string]any{
			"uuid":       uuid,
			"objectId":   objectID,
			"properties": props,
		})
	}
	return rows
}

// identityValue 保留标量身份值，对象与数组编码为 JSON 字符串，使 MERGE 键不为 null。
func identityValue(v any) any {
	switch val := v.(type) {
	case string, bool, float64, int, int64:
		return val
	case json.Number:
		return number(val)
	default:
		return encode(val)
	}
}

func dropNested(props map[string]any, field string) {
	prefix := field + "."
	for k := range props {
		if strings.HasPrefix(k, prefix) {
			delete(props, k)
		}
	}
}

func classify(err error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case neoErr.Code == codeConstraintValidationFailed:
			return &store.InsertError{Class: store.ClassDuplicateKey, Err: err}
		case neoErr.Code == codeTokenNameError, strings.Contains(neoErr.Msg, "is not a valid token name"):
			return &store.InsertError{Class: store.ClassInvalidFieldName, Err: err}
		}
	}
	return &store.InsertError{Class: store.ClassOther, Err: err}
}
