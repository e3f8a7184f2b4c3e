package ioc

import (
	"context"
	"fmt"
	"time"

	"fathomupload/internal/app"
	"fathomupload/internal/store"
	"fathomupload/internal/store/graph"
	"fathomupload/internal/store/mongodb"
	"fathomupload/internal/util"
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	connectBackoff  = time.Second
)

// InitStore 按 store.driver 构建文档存储，连接失败时按退避重试。
func InitStore(ctx context.Context, cfg app.Config, logger *zap.Logger) (store.Store, func(), error) {
	var (
		s   store.Store
		err error
	)
	connect := func() error {
		switch cfg.Store.Driver {
		case app.DriverNeo4j:
			var c *graph.Client
			c, err = graph.NewClient(ctx, graph.Config{
				URI:                  cfg.Neo4j.URI,
				Username:             cfg.Neo4j.Username,
				Password:             cfg.Neo4j.Password,
				Database:             cfg.Neo4j.Database,
				MaxConnectionPool:    cfg.Neo4j.MaxConnectionPool,
				ConnectionTimeoutSec: cfg.Neo4j.ConnectTimeoutSecond,
				BatchSize:            cfg.Neo4j.BatchSize,
			}, logger)
			if err == nil {
				s = c
			}
		case app.DriverMongo:
			var c *mongodb.Client
			c, err = mongodb.NewClient(ctx, mongodb.Config{
				URI:                  cfg.MongoURI(),
				Database:             cfg.Mongo.Database,
				MaxPoolSize:          cfg.Mongo.MaxPoolSize,
				ConnectionTimeoutSec: cfg.Mongo.ConnectTimeoutSecond,
				WriteConcernW:        cfg.Mongo.WriteConcernW,
			}, logger)
			if err == nil {
				s = c
			}
		default:
			err = fmt.Errorf("不支持的 store.driver: %q", cfg.Store.Driver)
		}
		if err != nil {
			logger.Warn("store connect failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		}
		return err
	}
	if err := util.Retry(ctx, connectAttempts, connectBackoff, connect); err != nil {
		return nil, nil, fmt.Errorf("连接存储失败: %w", err)
	}
	logger.Info("store connected", zap.String("driver", cfg.Store.Driver))

	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			logger.Warn("close store failed", zap.Error(err))
		}
	}
	return s, cleanup, nil
}
