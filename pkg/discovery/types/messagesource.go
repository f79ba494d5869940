package types

import (
	"github.com/IBM/sarama"
	"github.com/code-sigs/go-disco/pkg/discovery"
)

func init() {
	discovery.RegisterType(MessageSource, newMessageSourceReference)
}

// KafkaSource message-source 类型物化出的服务对象
type KafkaSource struct {
	Group sarama.ConsumerGroup
	Topic string
}

// MessageSourceLocation 构造 message-source 记录的 location
func MessageSourceLocation(endpoints []string, topic string) map[string]any {
	return map[string]any{
		"endpoints": endpoints,
		"topic":     topic,
	}
}

func newMessageSourceReference(d *discovery.Discovery, record *discovery.Record, config discovery.Config) (discovery.Reference, error) {
	topic := locString(record.Location, "topic")
	if topic == "" {
		return nil, missingLocation(MessageSource, "topic")
	}
	endpoints := locStrings(record.Location, "endpoints")
	if len(endpoints) == 0 {
		return nil, missingLocation(MessageSource, "endpoints")
	}

	build := func() (any, error) {
		group := locString(config, "group")
		if group == "" {
			group = "go-disco-consumer"
		}
		sc := sarama.NewConfig()
		sc.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
		if user := locString(config, "username"); user != "" {
			sc.Net.SASL.Enable = true
			sc.Net.SASL.User = user
			sc.Net.SASL.Password = locString(config, "password")
		}
		consumer, err := sarama.NewConsumerGroup(endpoints, group, sc)
		if err != nil {
			return nil, err
		}
		return &KafkaSource{
			Group: consumer,
			Topic: topic,
		}, nil
	}
	cleanup := func(service any) {
		if src, ok := service.(*KafkaSource); ok {
			_ = src.Group.Close()
		}
	}
	return discovery.NewBaseReference(d, record, config, build, cleanup), nil
}
