// Package chat 实现了聊天系统的实时网关
// kafka_client.go
// 核心职责：Kafka 基础设施管理
// 1. 封装 Kafka 底层连接 (Writer/Reader)
// 2. 提供帧写入接口 (SendMessage)
// 3. 纯技术组件，不包含聊天业务逻辑
package chat

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端结构
type KafkaClient struct {
	Producer *kafka.Writer // 生产者：负责写入帧
	Consumer *kafka.Reader // 消费者：负责读取帧
}

// KafkaClientConfig Kafka 连接配置
type KafkaClientConfig struct {
	HostPort  string
	ChatTopic string
	Partition int
	Timeout   time.Duration
}

// NewKafkaClient 创建 Kafka 客户端实例
func NewKafkaClient() *KafkaClient {
	return &KafkaClient{}
}

// KafkaInit 初始化 Kafka 客户端
func (k *KafkaClient) KafkaInit(cfg KafkaClientConfig) {
	k.Producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.Timeout,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	k.Consumer = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.HostPort},
		Topic:          cfg.ChatTopic,
		CommitInterval: cfg.Timeout,
		GroupID:        "chat",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭 Kafka 资源
func (k *KafkaClient) KafkaClose() {
	if k.Producer != nil {
		if err := k.Producer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
	if k.Consumer != nil {
		if err := k.Consumer.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// SendMessage 向 Kafka 写入一条帧
func (k *KafkaClient) SendMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// ReadMessage 从 Kafka 读取一条帧（阻塞）
func (k *KafkaClient) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return k.Consumer.ReadMessage(ctx)
}
