// Package chat 实现了聊天系统的实时网关
// kafka_broker.go
// 核心职责：分布式模式下的入站帧代理
// 帧先写入 Kafka 再由消费循环取回交给 Hub，多实例部署时由消费组分摊
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"go.uber.org/zap"

	"tradezone_chat_server/pkg/errorx"
)

// KafkaBroker 基于 Kafka 的 MessageBroker 实现
type KafkaBroker struct {
	hub       *Hub
	client    *KafkaClient
	partition int
	cancel    context.CancelFunc
	ctx       context.Context
}

// NewKafkaBroker 创建 KafkaBroker 实例
func NewKafkaBroker(hub *Hub, client *KafkaClient, partition int) *KafkaBroker {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBroker{
		hub:       hub,
		client:    client,
		partition: partition,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Publish 实现 MessageBroker 接口：帧序列化后写入 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, frame InboundFrame) error {
	value, err := json.Marshal(frame)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidMessage, "帧序列化失败")
	}
	key := []byte(strconv.Itoa(b.partition))
	return b.client.SendMessage(ctx, key, value)
}

// Start 实现 MessageBroker 接口：启动 Kafka 消费循环
func (b *KafkaBroker) Start() {
	for {
		msg, err := b.client.ReadMessage(b.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka读取失败", zap.Error(err))
			continue
		}
		var frame InboundFrame
		if err := json.Unmarshal(msg.Value, &frame); err != nil {
			zap.L().Error("kafka帧反序列化失败", zap.Error(err))
			continue
		}
		b.hub.Dispatch(frame)
	}
}

// Close 实现 MessageBroker 接口
func (b *KafkaBroker) Close() {
	b.cancel()
}
