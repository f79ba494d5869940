// Package redis 提供基于 redis 的 discovery backend，
// 所有记录以 JSON 存放在同一个 hash key 下，field 为 registration。
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/utils"
	"github.com/redis/go-redis/v9"
)

const Name = "redis"

const defaultKey = "go-disco:records"

func init() {
	discovery.RegisterBackend(Name, func() discovery.Backend {
		return &Backend{}
	})
}

// Config redis backend 配置
type Config struct {
	Address      []string `mapstructure:"address" json:"address"`           // 地址 host:port，多个地址走 cluster
	Password     string   `mapstructure:"password" json:"password"`         // 密码
	DB           int      `mapstructure:"db" json:"db"`                     // 数据库编号
	PoolSize     int      `mapstructure:"poolSize" json:"poolSize"`         // 连接池大小
	ReadTimeout  int64    `mapstructure:"readTimeout" json:"readTimeout"`   // 读取超时(秒)
	WriteTimeout int64    `mapstructure:"writeTimeout" json:"writeTimeout"` // 写入超时(秒)
	Key          string   `mapstructure:"key" json:"key"`                   // 记录存放的 hash key
}

type Backend struct {
	client redis.UniversalClient
	key    string
}

func (b *Backend) Init(ctx context.Context, config discovery.Config) error {
	cfg, err := discovery.DecodeConfig[Config](config)
	if err != nil {
		return err
	}
	if len(cfg.Address) == 0 {
		cfg.Address = []string{"localhost:6379"}
	}
	if cfg.Key == "" {
		cfg.Key = defaultKey
	}

	var client redis.UniversalClient
	if len(cfg.Address) > 1 {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.Address,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address[0],
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		})
	}

	if _, err := client.Ping(ctx).Result(); err != nil {
		return errs.WithCode(errs.Wrap(err, "connect to redis failed"), errs.ErrorBackendConfig)
	}

	b.client = client
	b.key = cfg.Key
	return nil
}

func (b *Backend) Store(ctx context.Context, record *discovery.Record) (*discovery.Record, error) {
	if record.Registration == "" {
		record.Registration = utils.GenerateUUID()
	}
	value, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	if err := b.client.HSet(ctx, b.key, record.Registration, value).Err(); err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Backend) Update(ctx context.Context, record *discovery.Record) error {
	if record.Registration == "" {
		return discovery.ErrMissingRegistration
	}
	exists, err := b.client.HExists(ctx, b.key, record.Registration).Result()
	if err != nil {
		return err
	}
	if !exists {
		return discovery.ErrRecordNotFound
	}
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return b.client.HSet(ctx, b.key, record.Registration, value).Err()
}

func (b *Backend) Remove(ctx context.Context, registration string) (*discovery.Record, error) {
	if registration == "" {
		return nil, discovery.ErrMissingRegistration
	}
	value, err := b.client.HGet(ctx, b.key, registration).Result()
	if err == redis.Nil {
		return nil, discovery.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := b.client.HDel(ctx, b.key, registration).Err(); err != nil {
		return nil, err
	}
	record := &discovery.Record{}
	if err := json.Unmarshal([]byte(value), record); err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Backend) List(ctx context.Context) ([]*discovery.Record, error) {
	values, err := b.client.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, err
	}
	records := make([]*discovery.Record, 0, len(values))
	for _, value := range values {
		record := &discovery.Record{}
		if err := json.Unmarshal([]byte(value), record); err != nil {
			continue // ignore bad data
		}
		records = append(records, record)
	}
	return records, nil
}

func (b *Backend) Name() string {
	return Name
}
