// Package kafkaimport 从远端集群的 announce topic 导入服务记录：
// UP 公告发布进本地注册表，DOWN 公告把对应的导入记录下线。
package kafkaimport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/code-sigs/go-disco/pkg/discovery"
	"github.com/code-sigs/go-disco/pkg/logger"
)

// Config kafka importer 配置
type Config struct {
	Endpoints []string `mapstructure:"endpoints" json:"endpoints"`
	Topic     string   `mapstructure:"topic" json:"topic"`
	Group     string   `mapstructure:"group" json:"group"`
	Username  string   `mapstructure:"username" json:"username"`
	Password  string   `mapstructure:"password" json:"password"`
}

// Importer 实现 discovery.Importer
type Importer struct {
	group  sarama.ConsumerGroup
	topic  string
	cancel context.CancelFunc

	mu sync.Mutex
	// 远端公告不携带 registration，用服务名关联本地导入的记录
	imported map[string]string // record name -> local registration
}

func New() *Importer {
	return &Importer{
		imported: make(map[string]string),
	}
}

func (i *Importer) Start(ctx context.Context, publisher discovery.Publisher, config discovery.Config) error {
	cfg, err := discovery.DecodeConfig[Config](config)
	if err != nil {
		return err
	}
	if cfg.Topic == "" {
		cfg.Topic = "disco.announce"
	}
	if cfg.Group == "" {
		cfg.Group = "go-disco-importer"
	}

	sc := sarama.NewConfig()
	sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	// sasl认证
	if cfg.Username != "" && cfg.Password != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User = cfg.Username
		sc.Net.SASL.Password = cfg.Password
	}

	group, err := sarama.NewConsumerGroup(cfg.Endpoints, cfg.Group, sc)
	if err != nil {
		return err
	}
	i.group = group
	i.topic = cfg.Topic

	consumeCtx, cancel := context.WithCancel(context.Background())
	i.cancel = cancel
	handler := &announceHandler{importer: i, publisher: publisher}
	go func() {
		for {
			if consumeCtx.Err() != nil {
				return
			}
			if err := group.Consume(consumeCtx, []string{cfg.Topic}, handler); err != nil {
				time.Sleep(time.Second * 10)
				continue
			}
		}
	}()
	return nil
}

// Stop 停止消费并把已导入的记录全部下线
func (i *Importer) Stop(ctx context.Context, publisher discovery.Publisher) error {
	if i.cancel != nil {
		i.cancel()
	}

	i.mu.Lock()
	registrations := make([]string, 0, len(i.imported))
	for _, registration := range i.imported {
		registrations = append(registrations, registration)
	}
	i.imported = make(map[string]string)
	i.mu.Unlock()

	for _, registration := range registrations {
		if err := publisher.Unpublish(ctx, registration); err != nil {
			logger.Warnw(ctx, "kafka importer unpublish imported record failed",
				"registration", registration, "error", err)
		}
	}

	if i.group != nil {
		return i.group.Close()
	}
	return nil
}

type announceHandler struct {
	importer  *Importer
	publisher discovery.Publisher
}

func (h *announceHandler) Setup(sess sarama.ConsumerGroupSession) error {
	return nil
}

func (h *announceHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	return nil
}

func (h *announceHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(sess.Context(), message.Value)
			sess.MarkMessage(message, "")
		case <-sess.Context().Done():
			return nil
		}
	}
}

func (h *announceHandler) handle(ctx context.Context, payload []byte) {
	record := &discovery.Record{}
	if err := json.Unmarshal(payload, record); err != nil {
		logger.Warnw(ctx, "kafka importer bad announce payload", "error", err)
		return
	}
	imp := h.importer

	if record.Status == discovery.StatusDown {
		imp.mu.Lock()
		registration, ok := imp.imported[record.Name]
		delete(imp.imported, record.Name)
		imp.mu.Unlock()
		if !ok {
			return
		}
		if err := h.publisher.Unpublish(ctx, registration); err != nil {
			logger.Warnw(ctx, "kafka importer unpublish failed", "name", record.Name, "error", err)
		}
		return
	}

	// 远端公告的 registration 已被清除，由本地 backend 重新分配
	record.Registration = ""
	stored, err := h.publisher.Publish(ctx, record)
	if err != nil {
		logger.Warnw(ctx, "kafka importer publish failed", "name", record.Name, "error", err)
		return
	}
	imp.mu.Lock()
	imp.imported[stored.Name] = stored.Registration
	imp.mu.Unlock()
}
