package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fathomupload/internal/document"
	"fathomupload/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// Config 控制 MongoDB 连接参数。
type Config struct {
	URI                  string
	Database             string
	MaxPoolSize          uint64
	ConnectionTimeoutSec int
	WriteConcernW        int
}

// Client 封装 mongo.Client，实现 store.Store。
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ store.Store = (*Client)(nil)

// NewClient 创建连接并 Ping 主节点。
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri 不能为空")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo database 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectionTimeoutSec > 0 {
		timeout := time.Duration(cfg.ConnectionTimeoutSec) * time.Second
		opts.SetConnectTimeout(timeout)
		opts.SetServerSelectionTimeout(timeout)
	}
	if cfg.WriteConcernW > 0 {
		opts.SetWriteConcern(&writeconcern.WriteConcern{W: cfg.WriteConcernW})
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("创建 mongo client 失败: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo 无法连通: %w", err)
	}
	return &Client{client: client, db: client.Database(cfg.Database), logger: logger}, nil
}

// Close 断开连接。
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// InsertBatch 以无序 InsertMany 写入整批文档，单条失败不影响其余文档写入。
func (c *Client) InsertBatch(ctx context.Context, destination string, docs []document.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	items := make([]interface{}, len(docs))
	for i, doc := range docs {
		items[i] = doc
	}
	res, err := c.db.Collection(destination).InsertMany(ctx, items, options.InsertMany().SetOrdered(false))
	if err != nil {
		return insertedOnError(len(docs), err), classify(err)
	}
	return len(res.InsertedIDs), nil
}

// EnsureIndexes 为每个集合建立 (uuid, objectId) 唯一索引和 uuid 普通索引。
// 单个集合失败只记录日志并继续，最后返回合并后的错误。
func (c *Client) EnsureIndexes(ctx context.Context, destinations []string) error {
	var errs []error
	for _, name := range destinations {
		models := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: document.FieldUUID, Value: 1}, {Key: document.FieldObjectID, Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: document.FieldUUID, Value: 1}},
			},
		}
		created, err := c.db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			c.logger.Error("ensure index failed", zap.String("destination", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("ensure index %s: %w", name, err))
			continue
		}
		c.logger.Info("ensure index", zap.String("destination", name), zap.Strings("indexes", created))
	}
	return errors.Join(errs...)
}
