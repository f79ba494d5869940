package eventbus

import (
	"context"

	"github.com/IBM/sarama"
)

// KafkaConfig kafka 总线配置
type KafkaConfig struct {
	Endpoints []string `mapstructure:"endpoints" json:"endpoints"`
	Username  string   `mapstructure:"username" json:"username"`
	Password  string   `mapstructure:"password" json:"password"`
}

// Kafka 基于 kafka 的广播总线，address 即 topic
type Kafka struct {
	cfg      *KafkaConfig
	producer sarama.SyncProducer
}

func NewKafka(cfg *KafkaConfig) (*Kafka, error) {
	sc := sarama.NewConfig()
	sc.Producer.Retry.Max = 1
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	// sasl认证
	if cfg.Username != "" && cfg.Password != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User = cfg.Username
		sc.Net.SASL.Password = cfg.Password
	}

	producer, err := sarama.NewSyncProducer(cfg.Endpoints, sc)
	if err != nil {
		return nil, err
	}
	return &Kafka{
		cfg:      cfg,
		producer: producer,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, address string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: address,
		Value: sarama.ByteEncoder(payload),
	}
	_, _, err := k.producer.SendMessage(msg)
	return err
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
