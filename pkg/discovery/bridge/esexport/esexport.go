// Package esexport 把注册表的记录同步到 elasticsearch，
// 形成可搜索的服务目录；文档 id 为 registration。
package esexport

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/logger"
	"github.com/code-sigs/go-disco/pkg/utils"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

// Config elasticsearch exporter 配置
type Config struct {
	Hosts    []string `mapstructure:"hosts" json:"hosts"`
	Username string   `mapstructure:"username" json:"username"`
	Password string   `mapstructure:"password" json:"password"`
	Index    string   `mapstructure:"index" json:"index"`
}

// Exporter 实现 discovery.Exporter
type Exporter struct {
	es    *elasticsearch.Client
	index string
}

// recordDocument 索引文档结构，NameSlug 是服务名的 ascii 转写，便于检索中文服务名
type recordDocument struct {
	discovery.Record
	NameSlug string `json:"nameSlug"`
}

func New(cfg Config) (*Exporter, error) {
	if cfg.Index == "" {
		cfg.Index = "go-disco-records"
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Hosts,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errs.WithCode(errs.Wrap(err, "创建 elastic client 失败"), errs.ErrorBridge)
	}

	// 通过 Info 接口进行轻量级健康检查
	res, err := client.Info()
	if err != nil {
		return nil, errs.WithCode(errs.Wrap(err, "连接 elastic 失败"), errs.ErrorBridge)
	}
	defer res.Body.Close()

	return &Exporter{
		es:    client,
		index: cfg.Index,
	}, nil
}

func (e *Exporter) OnPublish(record *discovery.Record) {
	e.indexRecord(record)
}

func (e *Exporter) OnUpdate(record *discovery.Record) {
	e.indexRecord(record)
}

func (e *Exporter) OnUnpublish(registration string) {
	req := esapi.DeleteRequest{
		Index:      e.index,
		DocumentID: registration,
	}
	res, err := req.Do(context.Background(), e.es)
	if err != nil {
		logger.Warnw(context.Background(), "es exporter delete failed", "registration", registration, "error", err)
		return
	}
	defer res.Body.Close()
}

func (e *Exporter) Close() error {
	return nil
}

func (e *Exporter) indexRecord(record *discovery.Record) {
	ctx := context.Background()
	if record.Registration == "" {
		// 入库失败的记录没有 registration，无法建立文档
		logger.Warnw(ctx, "es exporter skip record without registration", "name", record.Name)
		return
	}
	doc := recordDocument{
		Record:   *record.Copy(),
		NameSlug: utils.Slug(record.Name),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		logger.Warnw(ctx, "es exporter marshal record failed", "error", err)
		return
	}
	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: record.Registration,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, e.es)
	if err != nil {
		logger.Warnw(ctx, "es exporter index failed", "registration", record.Registration, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		logger.Warnw(ctx, "es exporter index error response", "registration", record.Registration, "status", res.StatusCode)
	}
}
