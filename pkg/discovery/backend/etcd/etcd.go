// Package etcd 提供基于 etcd 的 discovery backend，
// 每条记录是 prefix 下的一个 kv，key 为 registration。
package etcd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/utils"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const Name = "etcd"

const defaultPrefix = "/go-disco/records/"

func init() {
	discovery.RegisterBackend(Name, func() discovery.Backend {
		return &Backend{}
	})
}

// Config etcd backend 配置
type Config struct {
	Endpoints   []string `mapstructure:"endpoints" json:"endpoints"`
	Username    string   `mapstructure:"username" json:"username"`
	Password    string   `mapstructure:"password" json:"password"`
	DialTimeout int64    `mapstructure:"dialTimeout" json:"dialTimeout"` // 秒
	Prefix      string   `mapstructure:"prefix" json:"prefix"`
}

type Backend struct {
	cli    *clientv3.Client
	prefix string
}

func (b *Backend) Init(ctx context.Context, config discovery.Config) error {
	cfg, err := discovery.DecodeConfig[Config](config)
	if err != nil {
		return err
	}
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = []string{"localhost:2379"}
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
	})
	if err != nil {
		return errs.WithCode(errs.Wrap(err, "connect to etcd failed"), errs.ErrorBackendConfig)
	}
	b.cli = cli
	b.prefix = cfg.Prefix
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
	if _, err := b.cli.Put(ctx, b.prefix+record.Registration, string(value)); err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Backend) Update(ctx context.Context, record *discovery.Record) error {
	if record.Registration == "" {
		return discovery.ErrMissingRegistration
	}
	resp, err := b.cli.Get(ctx, b.prefix+record.Registration)
	if err != nil {
		return err
	}
	if len(resp.Kvs) == 0 {
		return discovery.ErrRecordNotFound
	}
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = b.cli.Put(ctx, b.prefix+record.Registration, string(value))
	return err
}

func (b *Backend) Remove(ctx context.Context, registration string) (*discovery.Record, error) {
	if registration == "" {
		return nil, discovery.ErrMissingRegistration
	}
	resp, err := b.cli.Get(ctx, b.prefix+registration)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, discovery.ErrRecordNotFound
	}
	record := &discovery.Record{}
	if err := json.Unmarshal(resp.Kvs[0].Value, record); err != nil {
		return nil, err
	}
	if _, err := b.cli.Delete(ctx, b.prefix+registration); err != nil {
		return nil, err
	}
	return record, nil
}

func (b *Backend) List(ctx context.Context) ([]*discovery.Record, error) {
	resp, err := b.cli.Get(ctx, b.prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	records := make([]*discovery.Record, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		record := &discovery.Record{}
		if err := json.Unmarshal(kv.Value, record); err != nil {
			continue // ignore bad data
		}
		records = append(records, record)
	}
	return records, nil
}

func (b *Backend) Name() string {
	return Name
}
