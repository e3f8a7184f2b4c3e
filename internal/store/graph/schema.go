package graph

import (
	"context"
	"errors"
	"fmt"

	"fathomupload/internal/cypher"
	"go.uber.org/zap"
)

// EnsureIndexes 为每个标签建立 (uuid, objectId) 唯一约束和 uuid 索引。
func (c *Client) EnsureIndexes(ctx context.Context, destinations []string) error {
	var errs []error
	for _, name := range destinations {
		stmts := cypher.Statements(cypher.EnsureSchema, map[string]string{
			"Label":          LabelPattern(name),
			"ConstraintName": constraintName(name),
			"IndexName":      indexName(name),
		})
		var failed bool
		for _, query := range stmts {
			if err := c.runRaw(ctx, query, nil); err != nil {
				c.logger.Error("ensure schema failed", zap.String("destination", name), zap.Error(err))
				errs = append(errs, fmt.Errorf("执行 schema 语句失败 label=%s: %w", name, err))
				failed = true
				break
			}
		}
		if !failed {
			c.logger.Info("ensure schema", zap.String("destination", name))
		}
	}
	return errors.Join(errs...)
}
