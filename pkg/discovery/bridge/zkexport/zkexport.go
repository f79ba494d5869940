// Package zkexport 把注册表的记录镜像到 zookeeper：
// 每条记录是 root 下的一个 JSON znode，节点名为 registration。
package zkexport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/logger"
	"github.com/go-zookeeper/zk"
)

// Config zookeeper exporter 配置
type Config struct {
	Servers        []string `mapstructure:"servers" json:"servers"`
	RootPath       string   `mapstructure:"rootPath" json:"rootPath"`
	SessionTimeout int64    `mapstructure:"sessionTimeout" json:"sessionTimeout"` // 秒
}

// Exporter 实现 discovery.Exporter
type Exporter struct {
	conn *zk.Conn
	root string
}

func New(cfg *Config) (*Exporter, error) {
	if cfg.RootPath == "" {
		cfg.RootPath = "/go-disco"
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 10
	}
	conn, _, err := zk.Connect(cfg.Servers, time.Duration(cfg.SessionTimeout)*time.Second)
	if err != nil {
		return nil, errs.WithCode(errs.Wrap(err, "connect to zookeeper failed"), errs.ErrorBridge)
	}

	// 初始化根路径
	if exists, _, _ := conn.Exists(cfg.RootPath); !exists {
		_, err := conn.Create(cfg.RootPath, nil, 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			conn.Close()
			return nil, errs.WithCode(errs.Wrap(err, "create zookeeper root path failed"), errs.ErrorBridge)
		}
	}

	return &Exporter{
		conn: conn,
		root: cfg.RootPath,
	}, nil
}

func (e *Exporter) OnPublish(record *discovery.Record) {
	if record.Registration == "" {
		// 入库失败的记录没有 registration，无法镜像
		logger.Warnw(context.Background(), "zk exporter skip record without registration", "name", record.Name)
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		logger.Warnw(context.Background(), "zk exporter marshal record failed", "error", err)
		return
	}
	path := e.nodePath(record.Registration)

	exists, _, err := e.conn.Exists(path)
	if err != nil {
		logger.Warnw(context.Background(), "zk exporter exists check failed", "path", path, "error", err)
		return
	}
	if exists {
		_ = e.conn.Delete(path, -1)
	}
	if _, err := e.conn.Create(path, data, 0, zk.WorldACL(zk.PermAll)); err != nil {
		logger.Warnw(context.Background(), "zk exporter create node failed", "path", path, "error", err)
	}
}

func (e *Exporter) OnUpdate(record *discovery.Record) {
	data, err := json.Marshal(record)
	if err != nil {
		logger.Warnw(context.Background(), "zk exporter marshal record failed", "error", err)
		return
	}
	path := e.nodePath(record.Registration)

	if _, err := e.conn.Set(path, data, -1); err != nil {
		if err != zk.ErrNoNode {
			logger.Warnw(context.Background(), "zk exporter set node failed", "path", path, "error", err)
			return
		}
		// 节点不存在则按发布处理
		if _, err := e.conn.Create(path, data, 0, zk.WorldACL(zk.PermAll)); err != nil {
			logger.Warnw(context.Background(), "zk exporter create node failed", "path", path, "error", err)
		}
	}
}

func (e *Exporter) OnUnpublish(registration string) {
	path := e.nodePath(registration)
	if err := e.conn.Delete(path, -1); err != nil && err != zk.ErrNoNode {
		logger.Warnw(context.Background(), "zk exporter delete node failed", "path", path, "error", err)
	}
}

func (e *Exporter) Close() error {
	e.conn.Close()
	return nil
}

func (e *Exporter) nodePath(registration string) string {
	return fmt.Sprintf("%s/%s", e.root, registration)
}
