package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 存储后端。
const (
	DriverMongo = "mongo"
	DriverNeo4j = "neo4j"
)

type HTTP struct {
	Listen     string `yaml:"listen"`
	TrustProxy bool   `yaml:"trust_proxy"`
}

type Store struct {
	Driver string `yaml:"driver"`
}

type Mongo struct {
	URI                  string `yaml:"uri"`
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	Database             string `yaml:"database"`
	MaxPoolSize          uint64 `yaml:"max_pool_size"`
	ConnectTimeoutSecond int    `yaml:"connect_timeout_second"`
	WriteConcernW        int    `yaml:"w"`
}

type Neo4j struct {
	URI                  string `yaml:"uri"`
	Username             string `yaml:"username"`
	Password             string `yaml:"password"`
	Database             string `yaml:"database"`
	MaxConnectionPool    int    `yaml:"max_connections"`
	ConnectTimeoutSecond int    `yaml:"connect_timeout_second"`
	BatchSize            int    `yaml:"batch_size"`
}

type Redis struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Key       string `yaml:"key"`
	OpTimeout int    `yaml:"op_timeout_ms"`
}

type Ingest struct {
	MaxBodyBytes         int64 `yaml:"max_body_bytes"`
	MaxParts             int   `yaml:"max_parts"`
	ParallelDestinations int   `yaml:"parallel_destinations"`
	CommitTimeoutSecond  int   `yaml:"commit_timeout_second"`
}

type Job struct {
	HeartbeatCron string `yaml:"heartbeat_cron"`
}

type Indexes struct {
	EnsureOnStart bool     `yaml:"ensure_on_start"`
	Destinations  []string `yaml:"destinations"`
}

type Log struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Store   Store   `yaml:"store"`
	Mongo   Mongo   `yaml:"mongo"`
	Neo4j   Neo4j   `yaml:"neo4j"`
	Redis   Redis   `yaml:"redis"`
	Ingest  Ingest  `yaml:"ingest"`
	Job     Job     `yaml:"job"`
	Indexes Indexes `yaml:"indexes"`
	Log     Log     `yaml:"log"`
}

// DefaultConfig 返回默认配置，与原上传服务的部署参数保持一致。
func DefaultConfig() Config {
	return Config{
		HTTP:  HTTP{Listen: ":3003", TrustProxy: true},
		Store: Store{Driver: DriverMongo},
		Mongo: Mongo{
			Host:                 "localhost",
			Port:                 27017,
			Database:             "test",
			MaxPoolSize:          10,
			ConnectTimeoutSecond: 10,
			WriteConcernW:        1,
		},
		Neo4j: Neo4j{
			URI:                  "bolt://localhost:7687",
			Username:             "neo4j",
			Database:             "neo4j",
			ConnectTimeoutSecond: 10,
			BatchSize:            500,
		},
		Redis: Redis{Addr: "localhost:6379", DB: 3, Key: "fathomupload", OpTimeout: 250},
		Ingest: Ingest{
			MaxBodyBytes:         100 << 20,
			MaxParts:             10000,
			ParallelDestinations: 4,
			CommitTimeoutSecond:  60,
		},
		Job: Job{HeartbeatCron: "@hourly"},
		Indexes: Indexes{
			Destinations: []string{"fathomstats", "homenet", "baseline", "debugtool", "domainperf", "pageload"},
		},
		Log: Log{Level: "info", Encoding: "console"},
	}
}

// LoadConfig 从文件加载配置，文件不存在时使用默认值，最后应用环境变量覆盖。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("读取配置失败: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("解析配置失败: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv 兼容原部署使用的环境变量。
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %w", name, err)
		}
		*dst = n
		return nil
	}

	var port int
	if err := num("PORT", &port); err != nil {
		return err
	}
	if port > 0 {
		c.HTTP.Listen = ":" + strconv.Itoa(port)
	}
	str("MONGOHOST", &c.Mongo.Host)
	if err := num("MONGOPORT", &c.Mongo.Port); err != nil {
		return err
	}
	str("MONGODB", &c.Mongo.Database)
	str("MONGO_URI", &c.Mongo.URI)
	str("REDISHOST", &c.Redis.Addr)
	if err := num("REDISDB", &c.Redis.DB); err != nil {
		return err
	}
	str("NEO4J_URI", &c.Neo4j.URI)
	str("NEO4J_PASSWORD", &c.Neo4j.Password)
	str("STORE_DRIVER", &c.Store.Driver)
	str("LOG_LEVEL", &c.Log.Level)
	return nil
}

// Validate 校验配置。
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverNeo4j:
	default:
		return fmt.Errorf("不支持的 store.driver: %q", c.Store.Driver)
	}
	if c.Ingest.MaxBodyBytes < 0 || c.Ingest.MaxParts < 0 || c.Ingest.ParallelDestinations < 0 {
		return errors.New("ingest 限制不能为负数")
	}
	return nil
}

// MongoURI 返回 mongo 连接串，未显式配置 uri 时由 host/port/database 拼接。
func (c Config) MongoURI() string {
	if c.Mongo.URI != "" {
		return c.Mongo.URI
	}
	return "mongodb://" + net.JoinHostPort(c.Mongo.Host, strconv.Itoa(c.Mongo.Port)) + "/" + c.Mongo.Database
}

// RedisAddr 返回 redis 地址，未带端口时补默认端口。
func (c Config) RedisAddr() string {
	if _, _, err := net.SplitHostPort(c.Redis.Addr); err != nil {
		return net.JoinHostPort(c.Redis.Addr, "6379")
	}
	return c.Redis.Addr
}

func (c Config) CommitTimeout() time.Duration {
	return time.Duration(c.Ingest.CommitTimeoutSecond) * time.Second
}

func (c Config) RedisOpTimeout() time.Duration {
	return time.Duration(c.Redis.OpTimeout) * time.Millisecond
}
