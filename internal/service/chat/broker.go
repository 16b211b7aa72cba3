// Package chat 实现了聊天系统的实时网关
// broker.go
// 核心职责：定义入站帧的传输接口
// 抽象帧投递路径，支持 Kafka 和 Channel 两种实现
package chat

import (
	"context"
	"encoding/json"
)

// InboundFrame 从客户端连接收到的一帧原始数据
// ConnId 标识来源连接，Hub 消费时据此找回连接和身份
type InboundFrame struct {
	ConnId string          `json:"connId"`
	Data   json.RawMessage `json:"data"`
}

// MessageBroker 定义入站帧代理接口
// 支持多种实现：KafkaBroker (分布式), ChannelBroker (单机)
type MessageBroker interface {
	// Publish 发布一帧到消息队列/通道
	Publish(ctx context.Context, frame InboundFrame) error
	// Start 启动消费循环，把帧交给 Hub 处理
	Start()
	// Close 关闭代理资源
	Close()
}
